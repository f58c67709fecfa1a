package model

import "time"

// HomeworkDeadlineWindow 作业截止窗口：创建后固定 24 小时，不可按作业配置
const HomeworkDeadlineWindow = 24 * time.Hour

// SubmissionStatus 学生对某份作业的派生状态，从不落库
type SubmissionStatus string

const (
	StatusPending   SubmissionStatus = "PENDING"
	StatusSubmitted SubmissionStatus = "SUBMITTED"
	StatusGraded    SubmissionStatus = "GRADED"
)

// Homework 作业 — 对应 homeworks
type Homework struct {
	HomeworkID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"homework_id"`
	GroupID     string    `gorm:"type:uuid;not null"                             json:"group_id"`
	Title       string    `gorm:"type:varchar(200);not null"                     json:"title"`
	Description string    `gorm:"type:text;not null;default:''"                  json:"description"`
	CreatedAt   time.Time `gorm:"not null"                                       json:"created_at"`

	// 关联
	Group *Group `gorm:"foreignKey:GroupID;references:GroupID" json:"group,omitempty"`
}

// TableName 指定表名
func (Homework) TableName() string { return "homeworks" }

// Deadline 截止时间 = 创建时间 + 24h
func (h *Homework) Deadline() time.Time {
	return h.CreatedAt.Add(HomeworkDeadlineWindow)
}

// IsExpired 在 now 时刻是否已过截止时间（等于截止时间不算过期）
func (h *Homework) IsExpired(now time.Time) bool {
	return now.After(h.Deadline())
}

// HomeworkSubmission 作业提交 — 对应 homework_submissions
// (homework_id, student_id) 在数据库层唯一
type HomeworkSubmission struct {
	SubmissionID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"submission_id"`
	HomeworkID   string     `gorm:"type:uuid;not null"                             json:"homework_id"`
	StudentID    string     `gorm:"type:uuid;not null"                             json:"student_id"`
	FilePath     string     `gorm:"type:varchar(500);not null"                     json:"file_path"`
	FileName     string     `gorm:"type:varchar(255);not null;default:''"          json:"file_name"`
	SubmittedAt  time.Time  `gorm:"not null"                                       json:"submitted_at"`
	Score        *int       `json:"score"`
	Feedback     string     `gorm:"type:text;not null;default:''"                  json:"feedback"`
	GradedAt     *time.Time `json:"graded_at"`

	// 关联
	Homework *Homework `gorm:"foreignKey:HomeworkID;references:HomeworkID" json:"homework,omitempty"`
	Student  *User     `gorm:"foreignKey:StudentID;references:UserID"     json:"student,omitempty"`
}

// TableName 指定表名
func (HomeworkSubmission) TableName() string { return "homework_submissions" }

// IsLate 提交时间是否晚于所属作业的截止时间；与当前时间无关
// 需要已加载 Homework 关联
func (s *HomeworkSubmission) IsLate() bool {
	if s.Homework == nil {
		return false
	}
	return s.SubmittedAt.After(s.Homework.Deadline())
}

// Status 已存在提交时的状态：无分数为 SUBMITTED，有分数为 GRADED
func (s *HomeworkSubmission) Status() SubmissionStatus {
	if s.Score == nil {
		return StatusSubmitted
	}
	return StatusGraded
}

// StatusOf 学生对作业的状态；sub 为 nil 表示尚未提交
func StatusOf(sub *HomeworkSubmission) SubmissionStatus {
	if sub == nil {
		return StatusPending
	}
	return sub.Status()
}
