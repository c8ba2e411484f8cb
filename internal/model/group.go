package model

import (
	"time"

	"gorm.io/gorm"
)

// MembershipStatus 入群状态
// 数据库中只存在 pending 与 approved；none 表示没有记录，拒绝即删除记录
type MembershipStatus string

const (
	MembershipNone     MembershipStatus = "none"
	MembershipPending  MembershipStatus = "pending"
	MembershipApproved MembershipStatus = "approved"
)

// ParseMembershipStatus 把查询参数转为可落库的状态，其他取值返回空串表示不过滤
func ParseMembershipStatus(raw string) MembershipStatus {
	switch s := MembershipStatus(raw); s {
	case MembershipPending, MembershipApproved:
		return s
	}
	return ""
}

// CommunityGroup 社区小组
// MemberCount 为管理员设置的基础人数，展示人数 = 基础人数 + 已通过的成员数
type CommunityGroup struct {
	gorm.Model
	Uuid        string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:小组唯一id"`
	Name        string `gorm:"column:name;type:varchar(50);not null;comment:小组名称"`
	Description string `gorm:"column:description;type:TEXT;comment:小组介绍"`
	Avatar      string `gorm:"column:avatar;type:varchar(255);comment:封面"`
	MemberCount int    `gorm:"column:member_count;not null;default:0;comment:基础人数"`
	CreatedBy   string `gorm:"column:created_by;type:char(20);comment:创建人uuid"`
}

func (CommunityGroup) TableName() string {
	return "community_groups"
}

// GroupMembership 入群记录
// (group_id, user_id) 唯一，删除为物理删除
type GroupMembership struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	GroupId   string           `gorm:"column:group_id;type:char(20);not null;uniqueIndex:idx_group_user;comment:小组uuid" json:"group_id"`
	UserId    string           `gorm:"column:user_id;type:char(20);not null;uniqueIndex:idx_group_user;index;comment:用户uuid" json:"user_id"`
	Status    MembershipStatus `gorm:"column:status;type:varchar(16);not null;index;comment:状态 pending/approved" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (GroupMembership) TableName() string {
	return "group_memberships"
}

// GroupPost 小组内的帖子
type GroupPost struct {
	ID        uint      `gorm:"primaryKey"`
	GroupId   string    `gorm:"column:group_id;type:char(20);not null;index;comment:小组uuid"`
	UserId    string    `gorm:"column:user_id;type:char(20);not null;comment:发帖人uuid"`
	Content   string    `gorm:"column:content;type:TEXT;not null;comment:内容"`
	CreatedAt time.Time `gorm:"index"`
}

func (GroupPost) TableName() string {
	return "group_posts"
}
