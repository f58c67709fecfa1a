package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role string `form:"role" binding:"omitempty,role"`
}

// CreateUserRequest 管理员创建用户
type CreateUserRequest struct {
	Phone    string `json:"phone"     binding:"required,max=32"`
	Password string `json:"password"  binding:"required,min=6,max=128"`
	Role     string `json:"role"      binding:"required,role"`
	FullName string `json:"full_name" binding:"omitempty,max=150"`
	IsStaff  bool   `json:"is_staff"`
}

// ResetPasswordResponse 重置密码响应
type ResetPasswordResponse struct {
	TempPassword string `json:"temp_password"`
}

// ImportUserResponse Excel 批量导入结果
type ImportUserResponse struct {
	Total   int               `json:"total"`
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	Errors  []ImportUserError `json:"errors,omitempty"`
	Created []ImportedUser    `json:"created,omitempty"`
}

// ImportUserError 导入失败的行
type ImportUserError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportedUser 导入成功的账号与初始密码（仅此一次返回）
type ImportedUser struct {
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	TempPassword string `json:"temp_password"`
}
