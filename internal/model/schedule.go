package model

import (
	"time"

	"gorm.io/gorm"
)

// Schedule 课程表条目 — 对应 schedules
// Day 由 Date 派生，每次写入时重新计算，不接受外部赋值
type Schedule struct {
	ScheduleID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_id"`
	GroupID    string    `gorm:"type:uuid;not null"                             json:"group_id"`
	Date       time.Time `gorm:"type:date;not null"                             json:"date"`
	Day        string    `gorm:"type:varchar(10);not null"                      json:"day"`
	StartTime  string    `gorm:"type:time;not null"                             json:"start_time"`
	EndTime    string    `gorm:"type:time;not null"                             json:"end_time"`
	Subject    string    `gorm:"type:varchar(100);not null"                     json:"subject"`
	BaseModel

	// 关联
	Group *Group `gorm:"foreignKey:GroupID;references:GroupID" json:"group,omitempty"`
}

// TableName 指定表名
func (Schedule) TableName() string { return "schedules" }

// WeekdayOf 日期对应的英文星期缩写（Mon..Sun）
func WeekdayOf(date time.Time) string {
	return date.Format("Mon")
}

// BeforeSave GORM 钩子：写入前根据日期重新计算星期
func (s *Schedule) BeforeSave(_ *gorm.DB) error {
	s.Day = WeekdayOf(s.Date)
	return nil
}
