package respond

import "church_app_server/internal/model"

// GroupView 小组列表项，带当前用户的入群状态
// MembersCount = 基础人数 + 已通过人数
type GroupView struct {
	GroupId      string                 `json:"group_id"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	Avatar       string                 `json:"avatar"`
	MembersCount int                    `json:"members_count"`
	Status       model.MembershipStatus `json:"status"`
	IsMember     bool                   `json:"is_member"`
}

// GroupPostView 小组帖子
type GroupPostView struct {
	Id          uint   `json:"id"`
	GroupId     string `json:"group_id"`
	UserId      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
	Content     string `json:"content"`
	CreatedAt   string `json:"created_at"`
}

// EnterGroupRespond 进入小组后的页面数据
type EnterGroupRespond struct {
	GroupId     string          `json:"group_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Avatar      string          `json:"avatar"`
	Posts       []GroupPostView `json:"posts"`
}

// MembershipRequestView 管理员看到的入群记录
type MembershipRequestView struct {
	Id          uint                   `json:"id"`
	GroupId     string                 `json:"group_id"`
	GroupName   string                 `json:"group_name"`
	UserId      string                 `json:"user_id"`
	DisplayName string                 `json:"display_name"`
	Avatar      string                 `json:"avatar"`
	Status      model.MembershipStatus `json:"status"`
	CreatedAt   string                 `json:"created_at"`
}
