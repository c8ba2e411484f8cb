package model

import (
	"time"

	"gorm.io/gorm"
)

// BlogCategory 博客分类
type BlogCategory struct {
	gorm.Model
	Name string `gorm:"column:name;type:varchar(50);uniqueIndex;not null;comment:分类名称"`
	Slug string `gorm:"column:slug;type:varchar(60);comment:分类别名"`
}

func (BlogCategory) TableName() string {
	return "blog_categories"
}

// BlogPost 博客文章
// Content 保存经过清洗的 HTML
type BlogPost struct {
	gorm.Model
	Title       string     `gorm:"column:title;type:varchar(150);not null;comment:标题"`
	Summary     string     `gorm:"column:summary;type:varchar(300);comment:摘要"`
	Content     string     `gorm:"column:content;type:MEDIUMTEXT;comment:正文"`
	CoverUrl    string     `gorm:"column:cover_url;type:varchar(255);comment:封面"`
	CategoryId  uint       `gorm:"column:category_id;index;comment:分类id"`
	AuthorId    string     `gorm:"column:author_id;type:char(20);comment:作者uuid"`
	Published   bool       `gorm:"column:published;index;not null;default:false;comment:是否发布"`
	PublishedAt *time.Time `gorm:"column:published_at;comment:发布时间"`
}

func (BlogPost) TableName() string {
	return "blog_posts"
}

// Sermon 讲道
type Sermon struct {
	gorm.Model
	Title       string    `gorm:"column:title;type:varchar(150);not null;comment:标题"`
	Preacher    string    `gorm:"column:preacher;type:varchar(50);comment:讲员"`
	Scripture   string    `gorm:"column:scripture;type:varchar(100);comment:经文"`
	Description string    `gorm:"column:description;type:TEXT;comment:简介"`
	MediaUrl    string    `gorm:"column:media_url;type:varchar(255);comment:音视频地址"`
	CoverUrl    string    `gorm:"column:cover_url;type:varchar(255);comment:封面"`
	PreachedAt  time.Time `gorm:"column:preached_at;index;comment:讲道日期"`
}

func (Sermon) TableName() string {
	return "sermons"
}

// 音频类型
const (
	TrackKindMusic   = "music"
	TrackKindPodcast = "podcast"
)

// MusicTrack 音乐 / 播客
type MusicTrack struct {
	gorm.Model
	Title           string `gorm:"column:title;type:varchar(150);not null;comment:标题"`
	Artist          string `gorm:"column:artist;type:varchar(100);comment:演唱者/主持人"`
	Album           string `gorm:"column:album;type:varchar(100);comment:专辑"`
	Kind            string `gorm:"column:kind;type:varchar(10);not null;default:music;index;comment:music/podcast"`
	MediaUrl        string `gorm:"column:media_url;type:varchar(255);comment:音频地址"`
	CoverUrl        string `gorm:"column:cover_url;type:varchar(255);comment:封面"`
	DurationSeconds int    `gorm:"column:duration_seconds;comment:时长（秒）"`
}

func (MusicTrack) TableName() string {
	return "music_tracks"
}

// Event 教会活动
// Capacity 为 0 表示不限人数
type Event struct {
	gorm.Model
	Title       string    `gorm:"column:title;type:varchar(150);not null;comment:标题"`
	Description string    `gorm:"column:description;type:TEXT;comment:介绍"`
	Location    string    `gorm:"column:location;type:varchar(150);comment:地点"`
	StartsAt    time.Time `gorm:"column:starts_at;index;not null;comment:开始时间"`
	EndsAt      time.Time `gorm:"column:ends_at;comment:结束时间"`
	Capacity    int       `gorm:"column:capacity;not null;default:0;comment:人数上限"`
	CoverUrl    string    `gorm:"column:cover_url;type:varchar(255);comment:封面"`
}

func (Event) TableName() string {
	return "events"
}

// EventRsvp 活动报名，(event_id, user_id) 唯一
type EventRsvp struct {
	ID        uint   `gorm:"primaryKey"`
	EventId   uint   `gorm:"column:event_id;not null;uniqueIndex:idx_event_user"`
	UserId    string `gorm:"column:user_id;type:char(20);not null;uniqueIndex:idx_event_user;index"`
	CreatedAt time.Time
}

func (EventRsvp) TableName() string {
	return "event_rsvps"
}
