package respond

// CategoryRespond 博客分类
type CategoryRespond struct {
	Id   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// BlogPostRespond 博客文章，列表中 Content 为空
type BlogPostRespond struct {
	Id           uint   `json:"id"`
	Title        string `json:"title"`
	Summary      string `json:"summary"`
	Content      string `json:"content,omitempty"`
	CoverUrl     string `json:"cover_url"`
	CategoryId   uint   `json:"category_id"`
	CategoryName string `json:"category_name"`
	Published    bool   `json:"published"`
	PublishedAt  string `json:"published_at"`
}

// SermonRespond 讲道
type SermonRespond struct {
	Id          uint   `json:"id"`
	Title       string `json:"title"`
	Preacher    string `json:"preacher"`
	Scripture   string `json:"scripture"`
	Description string `json:"description"`
	MediaUrl    string `json:"media_url"`
	CoverUrl    string `json:"cover_url"`
	PreachedAt  string `json:"preached_at"`
}

// MusicRespond 音频
type MusicRespond struct {
	Id              uint   `json:"id"`
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	Album           string `json:"album"`
	Kind            string `json:"kind"`
	MediaUrl        string `json:"media_url"`
	CoverUrl        string `json:"cover_url"`
	DurationSeconds int    `json:"duration_seconds"`
}

// EventRespond 活动，带报名人数与当前用户是否已报名
type EventRespond struct {
	Id          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	StartsAt    string `json:"starts_at"`
	EndsAt      string `json:"ends_at"`
	Capacity    int    `json:"capacity"`
	CoverUrl    string `json:"cover_url"`
	RsvpCount   int64  `json:"rsvp_count"`
	MyRsvp      bool   `json:"my_rsvp"`
	IsFull      bool   `json:"is_full"`
}

// RsvpRespond 报名切换结果
type RsvpRespond struct {
	EventId   uint  `json:"event_id"`
	Rsvped    bool  `json:"rsvped"`
	RsvpCount int64 `json:"rsvp_count"`
}

// HomeRespond 首页聚合
type HomeRespond struct {
	Posts   []BlogPostRespond `json:"posts"`
	Events  []EventRespond    `json:"events"`
	Sermons []SermonRespond   `json:"sermons"`
	Tracks  []MusicRespond    `json:"tracks"`
}

// ReflectRespond 灵修默想
type ReflectRespond struct {
	Reference  string `json:"reference"`
	Reflection string `json:"reflection"`
	Cached     bool   `json:"cached"`
}
