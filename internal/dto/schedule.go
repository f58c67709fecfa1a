package dto

// ── 课程表 DTO ──

// ScheduleListRequest 课程表查询参数（日期格式 YYYY-MM-DD）
type ScheduleListRequest struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to"   binding:"omitempty,datetime=2006-01-02"`
}

// CreateScheduleRequest 新增课程表条目；星期由日期推导，不接受传入
type CreateScheduleRequest struct {
	GroupID   string `json:"group_id"   binding:"required,uuid"`
	Date      string `json:"date"       binding:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" binding:"required,datetime=15:04"`
	EndTime   string `json:"end_time"   binding:"required,datetime=15:04"`
	Subject   string `json:"subject"    binding:"required,max=100"`
}

// ScheduleResponse 课程表条目
type ScheduleResponse struct {
	ID         string `json:"id"`
	GroupID    string `json:"group_id"`
	GroupName  string `json:"group_name"`
	CourseName string `json:"course_name,omitempty"`
	Date       string `json:"date"`
	Day        string `json:"day"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Subject    string `json:"subject"`
}
