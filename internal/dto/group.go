package dto

// ── 学习小组 DTO ──

// CreateGroupRequest 创建小组
type CreateGroupRequest struct {
	Name       string   `json:"name"        binding:"required,max=100"`
	CourseID   string   `json:"course_id"   binding:"required,uuid"`
	TeacherID  string   `json:"teacher_id"  binding:"required,uuid"`
	StudentIDs []string `json:"student_ids" binding:"omitempty,unique,dive,uuid"`
	Days       []string `json:"days"        binding:"required,min=1,unique,dive,weekday"`
}

// SetGroupStudentsRequest 整体替换小组学生
type SetGroupStudentsRequest struct {
	StudentIDs []string `json:"student_ids" binding:"omitempty,unique,dive,uuid"`
}

// GroupResponse 小组信息
type GroupResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	CourseID     string   `json:"course_id"`
	CourseName   string   `json:"course_name"`
	TeacherID    string   `json:"teacher_id"`
	TeacherName  string   `json:"teacher_name"`
	Days         []string `json:"days"`
	StudentCount int64    `json:"student_count"`
}
