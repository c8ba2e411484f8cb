package request

// IdRequest 通用 id 参数
type IdRequest struct {
	Id uint `json:"id" form:"id" binding:"required"`
}

// CategoryRequest 创建/更新博客分类，Id 为 0 表示创建
type CategoryRequest struct {
	Id   uint   `json:"id"`
	Name string `json:"name" binding:"required,max=50"`
	Slug string `json:"slug" binding:"omitempty,max=60"`
}

// BlogPostRequest 创建/更新博客文章
type BlogPostRequest struct {
	Id         uint   `json:"id"`
	Title      string `json:"title" binding:"required,max=150"`
	Summary    string `json:"summary" binding:"max=300"`
	Content    string `json:"content"`
	CoverUrl   string `json:"cover_url" binding:"omitempty,max=255"`
	CategoryId uint   `json:"category_id"`
	Published  bool   `json:"published"`
}

// BlogListRequest 博客列表
type BlogListRequest struct {
	PageRequest
	CategoryId uint `form:"category_id"`
}

// SermonRequest 创建/更新讲道，PreachedAt 格式 2006-01-02
type SermonRequest struct {
	Id          uint   `json:"id"`
	Title       string `json:"title" binding:"required,max=150"`
	Preacher    string `json:"preacher" binding:"max=50"`
	Scripture   string `json:"scripture" binding:"max=100"`
	Description string `json:"description"`
	MediaUrl    string `json:"media_url" binding:"omitempty,max=255"`
	CoverUrl    string `json:"cover_url" binding:"omitempty,max=255"`
	PreachedAt  string `json:"preached_at" binding:"required,datetime=2006-01-02"`
}

// MusicRequest 创建/更新音频
type MusicRequest struct {
	Id              uint   `json:"id"`
	Title           string `json:"title" binding:"required,max=150"`
	Artist          string `json:"artist" binding:"max=100"`
	Album           string `json:"album" binding:"max=100"`
	Kind            string `json:"kind" binding:"required,oneof=music podcast"`
	MediaUrl        string `json:"media_url" binding:"omitempty,max=255"`
	CoverUrl        string `json:"cover_url" binding:"omitempty,max=255"`
	DurationSeconds int    `json:"duration_seconds" binding:"min=0"`
}

// MusicListRequest 音频列表
type MusicListRequest struct {
	PageRequest
	Kind string `form:"kind" binding:"omitempty,oneof=music podcast"`
}

// EventRequest 创建/更新活动，时间格式 2006-01-02 15:04
type EventRequest struct {
	Id          uint   `json:"id"`
	Title       string `json:"title" binding:"required,max=150"`
	Description string `json:"description"`
	Location    string `json:"location" binding:"max=150"`
	StartsAt    string `json:"starts_at" binding:"required,datetime=2006-01-02 15:04"`
	EndsAt      string `json:"ends_at" binding:"omitempty,datetime=2006-01-02 15:04"`
	Capacity    int    `json:"capacity" binding:"min=0"`
	CoverUrl    string `json:"cover_url" binding:"omitempty,max=255"`
}

// EventListRequest 活动列表，All 为 false 时只返回未结束的
type EventListRequest struct {
	PageRequest
	All bool `form:"all"`
}

// RsvpRequest 报名/取消报名
type RsvpRequest struct {
	EventId uint `json:"event_id" binding:"required"`
}

// ReflectRequest 灵修默想
type ReflectRequest struct {
	Reference string `json:"reference" binding:"required,max=100"`
	Passage   string `json:"passage" binding:"max=4000"`
}
