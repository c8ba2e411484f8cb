// Package repository 提供数据访问层的具体实现
// 本文件实现博客、讲道、音乐的 Repository
package repository

import (
	"church_app_server/internal/model"

	"gorm.io/gorm"
)

// ==================== 博客分类 ====================

type blogCategoryRepository struct {
	idRepository[model.BlogCategory]
}

// NewBlogCategoryRepository 创建博客分类 Repository
func NewBlogCategoryRepository(db *gorm.DB) BlogCategoryRepository {
	return &blogCategoryRepository{idRepository[model.BlogCategory]{db: db, name: "博客分类"}}
}

// FindAll 按名称排序返回全部分类
func (r *blogCategoryRepository) FindAll() ([]model.BlogCategory, error) {
	var categories []model.BlogCategory
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, wrapDBError(err, "查询博客分类")
	}
	return categories, nil
}

// ==================== 博客文章 ====================

type blogPostRepository struct {
	idRepository[model.BlogPost]
}

// NewBlogPostRepository 创建博客文章 Repository
func NewBlogPostRepository(db *gorm.DB) BlogPostRepository {
	return &blogPostRepository{idRepository[model.BlogPost]{db: db, name: "博客文章"}}
}

// List 分页查询，已发布的按发布时间倒序
func (r *blogPostRepository) List(filter BlogPostFilter) ([]model.BlogPost, int64, error) {
	var posts []model.BlogPost
	var total int64

	query := r.db.Model(&model.BlogPost{})
	if filter.CategoryId != 0 {
		query = query.Where("category_id = ?", filter.CategoryId)
	}
	if filter.PublishedOnly {
		query = query.Where("published = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "查询博客文章总数")
	}
	if err := query.Order("published_at DESC, created_at DESC").
		Offset(pageOffset(filter.Page, filter.PageSize)).
		Limit(filter.PageSize).
		Find(&posts).Error; err != nil {
		return nil, 0, wrapDBError(err, "分页查询博客文章")
	}
	return posts, total, nil
}

// ClearCategory 文章分类置 0
func (r *blogPostRepository) ClearCategory(categoryId uint) error {
	if err := r.db.Model(&model.BlogPost{}).Where("category_id = ?", categoryId).Update("category_id", 0).Error; err != nil {
		return wrapDBErrorf(err, "清除文章分类 category_id=%d", categoryId)
	}
	return nil
}

// ==================== 讲道 ====================

type sermonRepository struct {
	idRepository[model.Sermon]
}

// NewSermonRepository 创建讲道 Repository
func NewSermonRepository(db *gorm.DB) SermonRepository {
	return &sermonRepository{idRepository[model.Sermon]{db: db, name: "讲道"}}
}

// List 按讲道日期倒序分页
func (r *sermonRepository) List(page, pageSize int) ([]model.Sermon, int64, error) {
	var sermons []model.Sermon
	var total int64
	if err := r.db.Model(&model.Sermon{}).Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "查询讲道总数")
	}
	if err := r.db.Order("preached_at DESC").Offset(pageOffset(page, pageSize)).Limit(pageSize).Find(&sermons).Error; err != nil {
		return nil, 0, wrapDBError(err, "分页查询讲道")
	}
	return sermons, total, nil
}

// ==================== 音乐 / 播客 ====================

type musicRepository struct {
	idRepository[model.MusicTrack]
}

// NewMusicRepository 创建音乐 Repository
func NewMusicRepository(db *gorm.DB) MusicRepository {
	return &musicRepository{idRepository[model.MusicTrack]{db: db, name: "音频"}}
}

// List kind 为空时返回全部
func (r *musicRepository) List(kind string, page, pageSize int) ([]model.MusicTrack, int64, error) {
	var tracks []model.MusicTrack
	var total int64

	query := r.db.Model(&model.MusicTrack{})
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "查询音频总数")
	}
	if err := query.Order("created_at DESC").Offset(pageOffset(page, pageSize)).Limit(pageSize).Find(&tracks).Error; err != nil {
		return nil, 0, wrapDBError(err, "分页查询音频")
	}
	return tracks, total, nil
}
