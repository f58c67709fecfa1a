package model

import "time"

// Rating 评分/考勤 — 对应 ratings
type Rating struct {
	RatingID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"rating_id"`
	StudentID  string    `gorm:"type:uuid;not null"                             json:"student_id"`
	GroupID    string    `gorm:"type:uuid;not null"                             json:"group_id"`
	Score      int       `gorm:"not null"                                       json:"score"`
	Attendance bool      `gorm:"not null;default:true"                          json:"attendance"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Student *User  `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
	Group   *Group `gorm:"foreignKey:GroupID;references:GroupID"  json:"group,omitempty"`
}

// TableName 指定表名
func (Rating) TableName() string { return "ratings" }
