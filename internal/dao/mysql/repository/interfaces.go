// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"time"

	"church_app_server/internal/model"

	"gorm.io/gorm"
)

// ==================== Repository 接口定义 ====================

// AccountRepository 登录账号数据访问接口
type AccountRepository interface {
	FindByEmail(email string) (*model.Account, error)
	FindByUuid(uuid string) (*model.Account, error)
	Create(account *model.Account) error
}

// ProfileRepository 个人资料数据访问接口
type ProfileRepository interface {
	// FindByUuid 根据用户 UUID 查找资料
	FindByUuid(uuid string) (*model.Profile, error)
	// FindByUuids 批量查找
	FindByUuids(uuids []string) ([]model.Profile, error)
	// Create 创建资料
	Create(profile *model.Profile) error
	// Update 更新展示信息（名称、简介、电话、头像）
	Update(profile *model.Profile) error
	// Search 管理员成员目录，按名称或邮箱模糊搜索并分页
	Search(keyword string, page, pageSize int) ([]model.Profile, int64, error)
	// UpdateRole 设置角色
	UpdateRole(uuid, role string) error
	// UpdateStatus 启用/禁用
	UpdateStatus(uuid string, status int8) error
}

// GroupRepository 社区小组数据访问接口
type GroupRepository interface {
	FindByUuid(uuid string) (*model.CommunityGroup, error)
	// FindAll 按创建时间倒序返回全部小组
	FindAll() ([]model.CommunityGroup, error)
	Create(group *model.CommunityGroup) error
	Update(group *model.CommunityGroup) error
	SoftDeleteByUuid(uuid string) error
}

// MembershipFilter 管理员查看入群记录的筛选条件，空字段不过滤
type MembershipFilter struct {
	GroupId string
	Status  model.MembershipStatus
}

// MembershipWithApplicant 入群记录（含申请人资料与小组名称）
type MembershipWithApplicant struct {
	ID          uint                   `json:"id"`
	GroupId     string                 `json:"group_id"`
	GroupName   string                 `json:"group_name"`
	UserId      string                 `json:"user_id"`
	DisplayName string                 `json:"display_name"`
	Avatar      string                 `json:"avatar"`
	Status      model.MembershipStatus `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
}

// MembershipRepository 入群记录数据访问接口
// 表未创建时各方法返回 CodeCollectionUnavailable
type MembershipRepository interface {
	// UpsertPending 以 (group_id, user_id) 为冲突键插入待审核记录，已存在时不做任何修改
	UpsertPending(groupId, userId string) error
	// FindByUser 查询用户的全部入群记录
	FindByUser(userId string) ([]model.GroupMembership, error)
	// FindApproved 查询全部已通过的记录，用于统计人数
	FindApproved() ([]model.GroupMembership, error)
	// FindByID 根据记录 id 查找
	FindByID(id uint) (*model.GroupMembership, error)
	// FindByGroupAndUser 查询某用户在某小组的记录
	FindByGroupAndUser(groupId, userId string) (*model.GroupMembership, error)
	// UpdateStatus 修改状态，记录不存在时返回 NotFound
	UpdateStatus(id uint, status model.MembershipStatus) error
	// DeleteByID 物理删除，记录不存在时返回 NotFound
	DeleteByID(id uint) error
	// DeleteByGroup 删除小组的全部记录，解散小组时使用
	DeleteByGroup(groupId string) error
	// ListWithApplicant 管理员视图，按创建时间倒序
	ListWithApplicant(filter MembershipFilter) ([]MembershipWithApplicant, error)
}

// PostWithAuthor 小组帖子（含作者资料）
type PostWithAuthor struct {
	ID          uint      `json:"id"`
	GroupId     string    `json:"group_id"`
	UserId      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Avatar      string    `json:"avatar"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// GroupPostRepository 小组帖子数据访问接口
type GroupPostRepository interface {
	Create(post *model.GroupPost) error
	// FindRecentByGroup 按时间倒序取最近 limit 条
	FindRecentByGroup(groupId string, limit int) ([]PostWithAuthor, error)
	DeleteByGroup(groupId string) error
}

// BlogCategoryRepository 博客分类数据访问接口
type BlogCategoryRepository interface {
	FindAll() ([]model.BlogCategory, error)
	FindByID(id uint) (*model.BlogCategory, error)
	Create(category *model.BlogCategory) error
	Update(category *model.BlogCategory) error
	Delete(id uint) error
}

// BlogPostFilter 博客列表筛选
type BlogPostFilter struct {
	CategoryId    uint
	PublishedOnly bool
	Page          int
	PageSize      int
}

// BlogPostRepository 博客文章数据访问接口
type BlogPostRepository interface {
	List(filter BlogPostFilter) ([]model.BlogPost, int64, error)
	FindByID(id uint) (*model.BlogPost, error)
	Create(post *model.BlogPost) error
	Update(post *model.BlogPost) error
	Delete(id uint) error
	// ClearCategory 删除分类时把文章移到未分类
	ClearCategory(categoryId uint) error
}

// SermonRepository 讲道数据访问接口
type SermonRepository interface {
	// List 按讲道日期倒序分页
	List(page, pageSize int) ([]model.Sermon, int64, error)
	FindByID(id uint) (*model.Sermon, error)
	Create(sermon *model.Sermon) error
	Update(sermon *model.Sermon) error
	Delete(id uint) error
}

// MusicRepository 音乐/播客数据访问接口
type MusicRepository interface {
	// List kind 为空时不按类型过滤
	List(kind string, page, pageSize int) ([]model.MusicTrack, int64, error)
	FindByID(id uint) (*model.MusicTrack, error)
	Create(track *model.MusicTrack) error
	Update(track *model.MusicTrack) error
	Delete(id uint) error
}

// EventRepository 活动数据访问接口
type EventRepository interface {
	// List upcomingOnly 为 true 时只返回结束时间晚于 now 的活动，按开始时间升序
	List(upcomingOnly bool, now time.Time, page, pageSize int) ([]model.Event, int64, error)
	FindByID(id uint) (*model.Event, error)
	// FindByIDForUpdate 事务内加行锁读取，报名时用于检查人数上限
	FindByIDForUpdate(id uint) (*model.Event, error)
	Create(event *model.Event) error
	Update(event *model.Event) error
	Delete(id uint) error
}

// EventRsvpRepository 活动报名数据访问接口
type EventRsvpRepository interface {
	Exists(eventId uint, userId string) (bool, error)
	Create(rsvp *model.EventRsvp) error
	// Delete 返回是否删除了记录
	Delete(eventId uint, userId string) (bool, error)
	CountByEvent(eventId uint) (int64, error)
	// CountByEvents 批量统计报名人数
	CountByEvents(eventIds []uint) (map[uint]int64, error)
	// FindEventIdsByUser 返回用户在给定活动中已报名的活动 id 集合
	FindEventIdsByUser(userId string, eventIds []uint) (map[uint]bool, error)
	DeleteByEvent(eventId uint) error
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db           *gorm.DB
	Account      AccountRepository
	Profile      ProfileRepository
	Group        GroupRepository
	Membership   MembershipRepository
	GroupPost    GroupPostRepository
	BlogCategory BlogCategoryRepository
	BlogPost     BlogPostRepository
	Sermon       SermonRepository
	Music        MusicRepository
	Event        EventRepository
	EventRsvp    EventRsvpRepository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:           db,
		Account:      NewAccountRepository(db),
		Profile:      NewProfileRepository(db),
		Group:        NewGroupRepository(db),
		Membership:   NewMembershipRepository(db),
		GroupPost:    NewGroupPostRepository(db),
		BlogCategory: NewBlogCategoryRepository(db),
		BlogPost:     NewBlogPostRepository(db),
		Sermon:       NewSermonRepository(db),
		Music:        NewMusicRepository(db),
		Event:        NewEventRepository(db),
		EventRsvp:    NewEventRsvpRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// 使用事务 db 创建新的 Repositories 实例
		return fn(NewRepositories(tx))
	})
}
