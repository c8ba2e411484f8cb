// Package repository 提供数据访问层的具体实现
// 本文件实现 GroupRepository 接口，处理社区小组相关的数据库操作
package repository

import (
	"church_app_server/internal/model"

	"gorm.io/gorm"
)

// groupRepository GroupRepository 接口的实现
type groupRepository struct {
	db *gorm.DB // GORM 数据库实例
}

// NewGroupRepository 创建 GroupRepository 实例
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

// FindByUuid 根据 UUID 查找小组
func (r *groupRepository) FindByUuid(uuid string) (*model.CommunityGroup, error) {
	var group model.CommunityGroup
	if err := r.db.First(&group, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询小组 uuid=%s", uuid)
	}
	return &group, nil
}

// FindAll 查找所有未删除的小组，新建的在前
func (r *groupRepository) FindAll() ([]model.CommunityGroup, error) {
	var groups []model.CommunityGroup
	if err := r.db.Order("created_at DESC").Find(&groups).Error; err != nil {
		return nil, wrapDBError(err, "查询所有小组")
	}
	return groups, nil
}

// Create 创建小组
func (r *groupRepository) Create(group *model.CommunityGroup) error {
	if err := r.db.Create(group).Error; err != nil {
		return wrapDBError(err, "创建小组")
	}
	return nil
}

// Update 更新小组信息
func (r *groupRepository) Update(group *model.CommunityGroup) error {
	if err := r.db.Save(group).Error; err != nil {
		return wrapDBErrorf(err, "更新小组 uuid=%s", group.Uuid)
	}
	return nil
}

// SoftDeleteByUuid 软删除小组
func (r *groupRepository) SoftDeleteByUuid(uuid string) error {
	return requireAffected(
		r.db.Where("uuid = ?", uuid).Delete(&model.CommunityGroup{}),
		"删除小组 uuid=%s", uuid)
}
