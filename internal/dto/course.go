package dto

// CreateCourseRequest 创建课程
type CreateCourseRequest struct {
	Name        string `json:"name"        binding:"required,max=150"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// CourseResponse 课程信息
type CourseResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
