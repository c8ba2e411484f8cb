// Package blog 博客分类与文章
// 正文按富文本清洗后保存，摘要只保留纯文本
package blog

import (
	"context"
	"strings"
	"time"

	"church_app_server/internal/dao/mysql/repository"
	myredis "church_app_server/internal/dao/redis"
	"church_app_server/internal/dto/request"
	"church_app_server/internal/dto/respond"
	"church_app_server/internal/model"
	"church_app_server/internal/session"
	"church_app_server/pkg/constants"
	"church_app_server/pkg/errorx"
	"church_app_server/pkg/util/htmlsanitize"

	"go.uber.org/zap"
)

type blogService struct {
	repos *repository.Repositories
	cache myredis.AsyncCacheService
}

// NewBlogService 构造函数
func NewBlogService(repos *repository.Repositories, cache myredis.AsyncCacheService) *blogService {
	return &blogService{repos: repos, cache: cache}
}

func (s *blogService) invalidateHome() {
	s.cache.SubmitTask(func() {
		if err := s.cache.Delete(context.Background(), constants.REDIS_HOME_FEED_KEY); err != nil {
			zap.L().Error("invalidate home feed", zap.Error(err))
		}
	})
}

func notFoundOr(err error, msg, op string) error {
	if errorx.IsNotFound(err) {
		return errorx.New(errorx.CodeNotFound, msg)
	}
	zap.L().Error(op, zap.Error(err))
	return errorx.ErrServerBusy
}

// ==================== 分类 ====================

// ListCategories 全部分类
func (s *blogService) ListCategories() ([]respond.CategoryRespond, error) {
	rows, err := s.repos.BlogCategory.FindAll()
	if err != nil {
		zap.L().Error("list blog categories", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	list := make([]respond.CategoryRespond, 0, len(rows))
	for _, c := range rows {
		list = append(list, respond.CategoryRespond{Id: c.ID, Name: c.Name, Slug: c.Slug})
	}
	return list, nil
}

// SaveCategory Id 为 0 时创建，否则更新
func (s *blogService) SaveCategory(actor session.Session, req request.CategoryRequest) (*respond.CategoryRespond, error) {
	if !actor.IsAdmin() {
		return nil, errorx.ErrForbidden
	}
	name := htmlsanitize.Plain(req.Name)
	if name == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "分类名称不能为空")
	}

	category := &model.BlogCategory{}
	if req.Id != 0 {
		found, err := s.repos.BlogCategory.FindByID(req.Id)
		if err != nil {
			return nil, notFoundOr(err, "分类不存在", "find blog category")
		}
		category = found
	}
	category.Name = name
	category.Slug = strings.ToLower(strings.TrimSpace(req.Slug))

	var err error
	if category.ID == 0 {
		err = s.repos.BlogCategory.Create(category)
	} else {
		err = s.repos.BlogCategory.Update(category)
	}
	if err != nil {
		if errorx.KindOf(err) == errorx.KindConflict {
			return nil, errorx.New(errorx.CodeConflict, "分类名称已存在")
		}
		zap.L().Error("save blog category", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return &respond.CategoryRespond{Id: category.ID, Name: category.Name, Slug: category.Slug}, nil
}

// DeleteCategory 删除分类，其下文章改为未分类
func (s *blogService) DeleteCategory(actor session.Session, id uint) error {
	if !actor.IsAdmin() {
		return errorx.ErrForbidden
	}
	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.BlogPost.ClearCategory(id); err != nil {
			return err
		}
		return tx.BlogCategory.Delete(id)
	})
	if err != nil {
		return notFoundOr(err, "分类不存在", "delete blog category")
	}
	return nil
}

// ==================== 文章 ====================

func (s *blogService) categoryNames() map[uint]string {
	names := make(map[uint]string)
	rows, err := s.repos.BlogCategory.FindAll()
	if err != nil {
		zap.L().Warn("load blog category names", zap.Error(err))
		return names
	}
	for _, c := range rows {
		names[c.ID] = c.Name
	}
	return names
}

func toRespond(p *model.BlogPost, names map[uint]string, withContent bool) respond.BlogPostRespond {
	rsp := respond.BlogPostRespond{
		Id:           p.ID,
		Title:        p.Title,
		Summary:      p.Summary,
		CoverUrl:     p.CoverUrl,
		CategoryId:   p.CategoryId,
		CategoryName: names[p.CategoryId],
		Published:    p.Published,
	}
	if withContent {
		rsp.Content = p.Content
	}
	if p.PublishedAt != nil {
		rsp.PublishedAt = p.PublishedAt.Format("2006-01-02 15:04")
	}
	return rsp
}

// ListPosts 文章列表；非管理员只能看到已发布的
func (s *blogService) ListPosts(sess session.Session, req request.BlogListRequest) (*respond.PageWrapper[respond.BlogPostRespond], error) {
	req.Normalize()
	rows, total, err := s.repos.BlogPost.List(repository.BlogPostFilter{
		CategoryId:    req.CategoryId,
		PublishedOnly: !sess.IsAdmin(),
		Page:          req.Page,
		PageSize:      req.PageSize,
	})
	if err != nil {
		zap.L().Error("list blog posts", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	names := s.categoryNames()
	list := make([]respond.BlogPostRespond, 0, len(rows))
	for i := range rows {
		list = append(list, toRespond(&rows[i], names, false))
	}
	return &respond.PageWrapper[respond.BlogPostRespond]{List: list, Total: total}, nil
}

// GetPost 文章详情，未发布的文章只有管理员可见
func (s *blogService) GetPost(sess session.Session, id uint) (*respond.BlogPostRespond, error) {
	post, err := s.repos.BlogPost.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "文章不存在", "get blog post")
	}
	if !post.Published && !sess.IsAdmin() {
		return nil, errorx.New(errorx.CodeNotFound, "文章不存在")
	}
	rsp := toRespond(post, s.categoryNames(), true)
	return &rsp, nil
}

// SavePost Id 为 0 时创建，否则更新；首次发布时记录发布时间
func (s *blogService) SavePost(actor session.Session, req request.BlogPostRequest) (*respond.BlogPostRespond, error) {
	if !actor.IsAdmin() {
		return nil, errorx.ErrForbidden
	}
	if req.CategoryId != 0 {
		if _, err := s.repos.BlogCategory.FindByID(req.CategoryId); err != nil {
			return nil, notFoundOr(err, "分类不存在", "find blog category")
		}
	}

	post := &model.BlogPost{AuthorId: actor.UserID}
	if req.Id != 0 {
		found, err := s.repos.BlogPost.FindByID(req.Id)
		if err != nil {
			return nil, notFoundOr(err, "文章不存在", "find blog post")
		}
		post = found
	}
	post.Title = htmlsanitize.Plain(req.Title)
	post.Summary = htmlsanitize.Plain(req.Summary)
	post.Content = htmlsanitize.Rich(req.Content)
	post.CoverUrl = req.CoverUrl
	post.CategoryId = req.CategoryId
	if req.Published && post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}
	post.Published = req.Published
	if post.Title == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "标题不能为空")
	}

	var err error
	if post.ID == 0 {
		err = s.repos.BlogPost.Create(post)
	} else {
		err = s.repos.BlogPost.Update(post)
	}
	if err != nil {
		zap.L().Error("save blog post", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	s.invalidateHome()
	rsp := toRespond(post, s.categoryNames(), true)
	return &rsp, nil
}

// DeletePost 删除文章
func (s *blogService) DeletePost(actor session.Session, id uint) error {
	if !actor.IsAdmin() {
		return errorx.ErrForbidden
	}
	if err := s.repos.BlogPost.Delete(id); err != nil {
		return notFoundOr(err, "文章不存在", "delete blog post")
	}
	s.invalidateHome()
	return nil
}
