package dto

import "time"

// ── 作业模块 DTO ──

// CreateHomeworkRequest 教师布置作业
type CreateHomeworkRequest struct {
	GroupID     string `json:"group"       binding:"required,uuid"`
	Title       string `json:"title"       binding:"required,max=200"`
	Description string `json:"description" binding:"omitempty,max=5000"`
}

// GradeRequest 教师评分；重复评分覆盖之前的结果
// 分数范围由 Service 在确认提交存在及归属之后校验
type GradeRequest struct {
	Score    *int   `json:"score"`
	Feedback string `json:"feedback" binding:"omitempty,max=5000"`
}

// SubmissionListRequest 教师查看提交的筛选参数
type SubmissionListRequest struct {
	Status  string `form:"status"   binding:"omitempty,oneof=SUBMITTED GRADED"`
	GroupID string `form:"group_id" binding:"omitempty,uuid"`
}

// HomeworkResponse 作业（含派生字段）
type HomeworkResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	GroupID     string             `json:"group_id"`
	GroupName   string             `json:"group_name"`
	CourseName  string             `json:"course_name"`
	CreatedAt   time.Time          `json:"created_at"`
	Deadline    time.Time          `json:"deadline"`
	Expired     bool               `json:"expired"`
	Status      string             `json:"status,omitempty"`
	Grade       *int               `json:"grade"`
	Feedback    string             `json:"feedback"`
	Submission  *SubmissionSummary `json:"submission"`
}

// SubmissionSummary 学生视角的提交摘要
type SubmissionSummary struct {
	ID          string     `json:"id"`
	SubmittedAt time.Time  `json:"submitted_at"`
	Late        bool       `json:"late"`
	FileName    string     `json:"file_name"`
	FileURL     string     `json:"file_url"`
	Score       *int       `json:"score"`
	Feedback    string     `json:"feedback"`
	GradedAt    *time.Time `json:"graded_at"`
}

// HomeworkDetailResponse 作业详情
type HomeworkDetailResponse struct {
	HomeworkResponse
	TeacherName     string `json:"teacher_name"`
	SubmissionCount *int64 `json:"submission_count,omitempty"` // 仅教师可见
}

// TeachingHomeworkResponse 教师视角的作业列表项
type TeachingHomeworkResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	GroupID         string    `json:"group_id"`
	GroupName       string    `json:"group_name"`
	CourseName      string    `json:"course_name"`
	CreatedAt       time.Time `json:"created_at"`
	Deadline        time.Time `json:"deadline"`
	Expired         bool      `json:"expired"`
	SubmissionCount int64     `json:"submission_count"`
}

// MySubmissionResponse 学生自己的提交记录
type MySubmissionResponse struct {
	ID          string     `json:"id"`
	HomeworkID  string     `json:"homework_id"`
	Homework    string     `json:"homework"`
	GroupName   string     `json:"group_name"`
	SubmittedAt time.Time  `json:"submitted_at"`
	Late        bool       `json:"late"`
	Status      string     `json:"status"`
	Score       *int       `json:"score"`
	Feedback    string     `json:"feedback"`
	GradedAt    *time.Time `json:"graded_at"`
}

// TeacherSubmissionResponse 教师视角的提交记录
type TeacherSubmissionResponse struct {
	ID          string     `json:"id"`
	Student     string     `json:"student"` // 学生手机号
	StudentName string     `json:"student_name"`
	HomeworkID  string     `json:"homework_id"`
	Homework    string     `json:"homework"`
	GroupName   string     `json:"group_name"`
	SubmittedAt time.Time  `json:"submitted_at"`
	Late        bool       `json:"late"`
	Status      string     `json:"status"`
	File        string     `json:"file"`
	FileName    string     `json:"file_name"`
	Score       *int       `json:"score"`
	Feedback    string     `json:"feedback"`
	GradedAt    *time.Time `json:"graded_at"`
}

// StudentStatsResponse 学生作业统计
type StudentStatsResponse struct {
	Total        int     `json:"total"`
	Submitted    int     `json:"submitted"`
	Pending      int     `json:"pending"`
	AverageGrade float64 `json:"average_grade"`
}

// TeacherStatsResponse 教师统计
type TeacherStatsResponse struct {
	TotalGroups   int   `json:"total_groups"`
	TotalStudents int64 `json:"total_students"`
	TotalHomework int64 `json:"total_homework"`
	PendingGrades int64 `json:"pending_grades"`
}

// SubmitResponse 提交成功响应
type SubmitResponse struct {
	Message      string    `json:"message"`
	SubmissionID string    `json:"submission_id"`
	SubmittedAt  time.Time `json:"submitted_at"`
	Late         bool      `json:"late"`
}
