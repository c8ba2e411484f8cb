package repository

import (
	"gorm.io/gorm"
)

// idRepository 以自增主键存取的通用实现，内容类 Repository 嵌入复用
type idRepository[T any] struct {
	db   *gorm.DB
	name string // 日志与错误消息中的实体名
}

// FindByID 根据主键查找
func (r idRepository[T]) FindByID(id uint) (*T, error) {
	var v T
	if err := r.db.First(&v, id).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询%s id=%d", r.name, id)
	}
	return &v, nil
}

// Create 新增
func (r idRepository[T]) Create(v *T) error {
	if err := r.db.Create(v).Error; err != nil {
		return wrapDBErrorf(err, "创建%s", r.name)
	}
	return nil
}

// Update 保存全部字段
func (r idRepository[T]) Update(v *T) error {
	if err := r.db.Save(v).Error; err != nil {
		return wrapDBErrorf(err, "更新%s", r.name)
	}
	return nil
}

// Delete 根据主键删除（带 DeletedAt 的模型为软删除）
func (r idRepository[T]) Delete(id uint) error {
	return requireAffected(r.db.Delete(new(T), id), "删除%s id=%d", r.name, id)
}
