package model

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Phone        string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"phone"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         Role   `gorm:"type:varchar(10);not null"                      json:"role"`
	FullName     string `gorm:"type:varchar(150);not null;default:''"          json:"full_name"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	IsStaff      bool   `gorm:"not null;default:false"                         json:"is_staff"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// DisplayName 展示名：优先全名，否则手机号
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Phone
}
