package model

import "gorm.io/datatypes"

// WeekDays 小组可选的上课日（周一至周六）
var WeekDays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// ValidWeekDay 是否为合法上课日
func ValidWeekDay(d string) bool {
	for _, w := range WeekDays {
		if w == d {
			return true
		}
	}
	return false
}

// Group 学习小组 — 对应 study_groups
type Group struct {
	GroupID   string                      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"group_id"`
	Name      string                      `gorm:"type:varchar(100);not null"                     json:"name"`
	CourseID  string                      `gorm:"type:uuid;not null"                             json:"course_id"`
	TeacherID string                      `gorm:"type:uuid;not null"                             json:"teacher_id"`
	Days      datatypes.JSONSlice[string] `gorm:"type:jsonb;not null"                            json:"days"`
	BaseModel

	// 关联
	Course   *Course `gorm:"foreignKey:CourseID;references:CourseID"                                                          json:"course,omitempty"`
	Teacher  *User   `gorm:"foreignKey:TeacherID;references:UserID"                                                           json:"teacher,omitempty"`
	Students []User  `gorm:"many2many:group_students;foreignKey:GroupID;joinForeignKey:GroupID;references:UserID;joinReferences:StudentID" json:"students,omitempty"`
}

// TableName 指定表名
func (Group) TableName() string { return "study_groups" }

// HasStudent 学生是否在本组（需已加载 Students）
func (g *Group) HasStudent(userID string) bool {
	for i := range g.Students {
		if g.Students[i].UserID == userID {
			return true
		}
	}
	return false
}
