package request

// UpdateProfileRequest 更新个人资料
// 使用位置:
//   - handler/profile_handler.go: UpdateProfile
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required,max=50"`
	Bio         string `json:"bio" binding:"max=255"`
	Phone       string `json:"phone" binding:"omitempty,max=20"`
	Avatar      string `json:"avatar" binding:"omitempty,max=255"`
}

// PageRequest 通用分页参数
type PageRequest struct {
	Page     int `form:"page" json:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" json:"page_size" binding:"omitempty,min=1,max=100"`
}

// Normalize 填充默认分页
func (p *PageRequest) Normalize() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
}

// MemberListRequest 管理员成员目录
type MemberListRequest struct {
	PageRequest
	Keyword string `form:"keyword"`
}

// SetRoleRequest 设置角色
type SetRoleRequest struct {
	UserId string `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required,oneof=member admin"`
}

// SetStatusRequest 启用/禁用成员
type SetStatusRequest struct {
	UserId string `json:"user_id" binding:"required"`
	Status *int8  `json:"status" binding:"required,oneof=0 1"`
}
