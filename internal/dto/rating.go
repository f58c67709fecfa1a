package dto

// CreateRatingRequest 录入评分/考勤
type CreateRatingRequest struct {
	StudentID  string `json:"student_id" binding:"required,uuid"`
	GroupID    string `json:"group_id"   binding:"required,uuid"`
	Score      *int   `json:"score"      binding:"required,min=0,max=100"`
	Attendance *bool  `json:"attendance" binding:"required"`
}

// RatingResponse 评分/考勤记录
type RatingResponse struct {
	ID           string `json:"id"`
	StudentID    string `json:"student_id"`
	StudentPhone string `json:"student"`
	StudentName  string `json:"student_name"`
	GroupID      string `json:"group_id"`
	GroupName    string `json:"group"`
	Score        int    `json:"score"`
	Attendance   bool   `json:"attendance"`
	CreatedAt    string `json:"created_at"`
}
