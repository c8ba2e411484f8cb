// Package repository 提供数据访问层的具体实现
// 本文件实现 MembershipRepository 接口，处理入群申请与成员关系
package repository

import (
	"church_app_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type membershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository 创建 MembershipRepository 实例
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

// UpsertPending 插入待审核记录
// 冲突键为 (group_id, user_id)，已有记录（包括已通过的）保持不变
func (r *membershipRepository) UpsertPending(groupId, userId string) error {
	m := model.GroupMembership{
		GroupId: groupId,
		UserId:  userId,
		Status:  model.MembershipPending,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&m).Error
	if err != nil {
		return wrapDBErrorf(err, "申请入群 group_id=%s user_id=%s", groupId, userId)
	}
	return nil
}

// FindByUser 查询用户的全部入群记录
func (r *membershipRepository) FindByUser(userId string) ([]model.GroupMembership, error) {
	var rows []model.GroupMembership
	if err := r.db.Where("user_id = ?", userId).Find(&rows).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询入群记录 user_id=%s", userId)
	}
	return rows, nil
}

// FindApproved 查询全部已通过记录
func (r *membershipRepository) FindApproved() ([]model.GroupMembership, error) {
	var rows []model.GroupMembership
	if err := r.db.Where("status = ?", model.MembershipApproved).Find(&rows).Error; err != nil {
		return nil, wrapDBError(err, "查询已通过的入群记录")
	}
	return rows, nil
}

// FindByID 根据记录 id 查找
func (r *membershipRepository) FindByID(id uint) (*model.GroupMembership, error) {
	var row model.GroupMembership
	if err := r.db.First(&row, id).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询入群记录 id=%d", id)
	}
	return &row, nil
}

// FindByGroupAndUser 查询某用户在某小组的记录
func (r *membershipRepository) FindByGroupAndUser(groupId, userId string) (*model.GroupMembership, error) {
	var row model.GroupMembership
	if err := r.db.Where("group_id = ? AND user_id = ?", groupId, userId).First(&row).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询入群记录 group_id=%s user_id=%s", groupId, userId)
	}
	return &row, nil
}

// UpdateStatus 修改状态
func (r *membershipRepository) UpdateStatus(id uint, status model.MembershipStatus) error {
	return requireAffected(
		r.db.Model(&model.GroupMembership{}).Where("id = ?", id).Update("status", status),
		"更新入群记录 id=%d", id)
}

// DeleteByID 物理删除（拒绝与移除共用）
func (r *membershipRepository) DeleteByID(id uint) error {
	return requireAffected(r.db.Delete(&model.GroupMembership{}, id), "删除入群记录 id=%d", id)
}

// DeleteByGroup 删除小组全部入群记录
func (r *membershipRepository) DeleteByGroup(groupId string) error {
	if err := r.db.Where("group_id = ?", groupId).Delete(&model.GroupMembership{}).Error; err != nil {
		return wrapDBErrorf(err, "删除小组入群记录 group_id=%s", groupId)
	}
	return nil
}

// ListWithApplicant 通过 LEFT JOIN 带出申请人昵称头像和小组名称
func (r *membershipRepository) ListWithApplicant(filter MembershipFilter) ([]MembershipWithApplicant, error) {
	var rows []MembershipWithApplicant
	query := r.db.Table("group_memberships AS m").
		Select("m.id, m.group_id, g.name AS group_name, m.user_id, p.display_name, p.avatar, m.status, m.created_at").
		Joins("LEFT JOIN profiles AS p ON p.uuid = m.user_id").
		Joins("LEFT JOIN community_groups AS g ON g.uuid = m.group_id")
	if filter.GroupId != "" {
		query = query.Where("m.group_id = ?", filter.GroupId)
	}
	if filter.Status != "" {
		query = query.Where("m.status = ?", filter.Status)
	}
	if err := query.Order("m.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, wrapDBError(err, "查询入群申请列表")
	}
	return rows, nil
}
