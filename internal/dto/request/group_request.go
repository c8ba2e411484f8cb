package request

// GroupIdRequest 只携带小组 id 的请求（加入、进入、查看帖子）
type GroupIdRequest struct {
	GroupId string `json:"group_id" form:"group_id" binding:"required"`
}

// CreateGroupRequest 管理员创建小组
type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required,max=50"`
	Description string `json:"description" binding:"max=2000"`
	Avatar      string `json:"avatar" binding:"omitempty,max=255"`
	MemberCount int    `json:"member_count" binding:"min=0"`
}

// UpdateGroupRequest 管理员更新小组
type UpdateGroupRequest struct {
	GroupId string `json:"group_id" binding:"required"`
	CreateGroupRequest
}

// CreatePostRequest 小组发帖
type CreatePostRequest struct {
	GroupId string `json:"group_id" binding:"required"`
	Content string `json:"content" binding:"required,max=5000"`
}

// MembershipIdRequest 审核/拒绝/移除，参数为入群记录 id
type MembershipIdRequest struct {
	Id uint `json:"id" binding:"required"`
}

// MembershipListRequest 管理员查看入群记录
type MembershipListRequest struct {
	GroupId string `form:"group_id"`
	Status  string `form:"status" binding:"omitempty,oneof=pending approved"`
}
