package model

// Role 用户角色（封闭集合）
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

// AllRoles 全部合法角色
var AllRoles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

// Valid 是否为合法角色
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole 将字符串解析为角色，非法值返回 false
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// Principal 已认证的调用方，由认证中间件构造并显式传给各 Service
type Principal struct {
	UserID string
	Role   Role
}

// Is 调用方是否为指定角色
func (p Principal) Is(role Role) bool { return p.Role == role }
