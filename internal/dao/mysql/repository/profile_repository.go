package repository

import (
	"church_app_server/internal/model"

	"gorm.io/gorm"
)

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建个人资料 Repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// FindByUuid 按 UUID 查找资料
func (r *profileRepository) FindByUuid(uuid string) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.First(&profile, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询资料 uuid=%s", uuid)
	}
	return &profile, nil
}

// FindByUuids 按 UUID 列表查找资料
func (r *profileRepository) FindByUuids(uuids []string) ([]model.Profile, error) {
	var profiles []model.Profile
	if len(uuids) == 0 {
		return profiles, nil
	}
	if err := r.db.Where("uuid IN ?", uuids).Find(&profiles).Error; err != nil {
		return nil, wrapDBError(err, "批量查询资料")
	}
	return profiles, nil
}

// Create 创建资料
func (r *profileRepository) Create(profile *model.Profile) error {
	if err := r.db.Create(profile).Error; err != nil {
		return wrapDBError(err, "创建资料")
	}
	return nil
}

// Update 只更新展示字段，角色和状态由管理员接口单独修改
func (r *profileRepository) Update(profile *model.Profile) error {
	tx := r.db.Model(&model.Profile{}).Where("uuid = ?", profile.Uuid).Updates(map[string]any{
		"display_name": profile.DisplayName,
		"avatar":       profile.Avatar,
		"bio":          profile.Bio,
		"phone":        profile.Phone,
	})
	if tx.Error != nil {
		return wrapDBErrorf(tx.Error, "更新资料 uuid=%s", profile.Uuid)
	}
	return nil
}

// Search 分页搜索成员，keyword 为空时返回全部
func (r *profileRepository) Search(keyword string, page, pageSize int) ([]model.Profile, int64, error) {
	var profiles []model.Profile
	var total int64

	query := r.db.Model(&model.Profile{})
	if keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("display_name LIKE ? OR email LIKE ?", like, like)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "查询成员总数")
	}
	if err := query.Order("created_at DESC").Offset(pageOffset(page, pageSize)).Limit(pageSize).Find(&profiles).Error; err != nil {
		return nil, 0, wrapDBError(err, "分页查询成员")
	}
	return profiles, total, nil
}

// UpdateRole 设置角色
func (r *profileRepository) UpdateRole(uuid, role string) error {
	return requireAffected(
		r.db.Model(&model.Profile{}).Where("uuid = ?", uuid).Update("role", role),
		"设置角色 uuid=%s", uuid)
}

// UpdateStatus 启用/禁用
func (r *profileRepository) UpdateStatus(uuid string, status int8) error {
	return requireAffected(
		r.db.Model(&model.Profile{}).Where("uuid = ?", uuid).Update("status", status),
		"设置状态 uuid=%s", uuid)
}
