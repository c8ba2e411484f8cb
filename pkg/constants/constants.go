package constants

const (
	CHANNEL_SIZE               = 100      // websocket 发送缓冲大小
	FILE_MAX_SIZE              = 50 << 20 // 上传文件最大字节数（50MB）
	AVATAR_MAX_SIZE            = 5 << 20  // 头像最大字节数（5MB）
	REFRESH_TOKEN_EXPIRY_HOURS = 168      // Refresh Token 有效期（小时），168小时 = 7天
	DEFAULT_AVATAR             = "/static/avatars/default.png"
	RECENT_POST_LIMIT          = 50 // 进入群组时返回的最近帖子数
	HOME_SECTION_LIMIT         = 5  // 首页每个栏目的条数
)

// Redis 键前缀
const (
	REDIS_USER_TOKEN_PREFIX          = "user_token:"
	REDIS_MEMBERSHIP_FALLBACK_PREFIX = "membership_fallback:"
	REDIS_DEVOTION_PREFIX            = "devotion:"
	REDIS_HOME_FEED_KEY              = "home_feed"
)
