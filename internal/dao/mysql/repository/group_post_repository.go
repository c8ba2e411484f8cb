package repository

import (
	"church_app_server/internal/model"

	"gorm.io/gorm"
)

type groupPostRepository struct {
	db *gorm.DB
}

// NewGroupPostRepository 创建小组帖子 Repository
func NewGroupPostRepository(db *gorm.DB) GroupPostRepository {
	return &groupPostRepository{db: db}
}

// Create 发帖
func (r *groupPostRepository) Create(post *model.GroupPost) error {
	if err := r.db.Create(post).Error; err != nil {
		return wrapDBError(err, "创建帖子")
	}
	return nil
}

// FindRecentByGroup 关联 profiles 取作者昵称头像
func (r *groupPostRepository) FindRecentByGroup(groupId string, limit int) ([]PostWithAuthor, error) {
	var posts []PostWithAuthor
	if err := r.db.Table("group_posts AS gp").
		Select("gp.id, gp.group_id, gp.user_id, p.display_name, p.avatar, gp.content, gp.created_at").
		Joins("LEFT JOIN profiles AS p ON p.uuid = gp.user_id").
		Where("gp.group_id = ?", groupId).
		Order("gp.created_at DESC").
		Limit(limit).
		Scan(&posts).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询小组帖子 group_id=%s", groupId)
	}
	return posts, nil
}

// DeleteByGroup 删除小组全部帖子
func (r *groupPostRepository) DeleteByGroup(groupId string) error {
	if err := r.db.Where("group_id = ?", groupId).Delete(&model.GroupPost{}).Error; err != nil {
		return wrapDBErrorf(err, "删除小组帖子 group_id=%s", groupId)
	}
	return nil
}
