package respond

// LoginRespond 登录/注册响应
// 使用位置:
//   - internal/service/auth: Register, Login
type LoginRespond struct {
	UserId       string `json:"user_id"`
	DisplayName  string `json:"display_name"`
	Email        string `json:"email"`
	Avatar       string `json:"avatar"`
	Role         string `json:"role"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshRespond 刷新 Token 响应
type RefreshRespond struct {
	AccessToken string `json:"access_token"`
}

// ProfileRespond 个人资料
type ProfileRespond struct {
	UserId      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Avatar      string `json:"avatar"`
	Bio         string `json:"bio"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
	Status      int8   `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// UploadRespond 上传结果
type UploadRespond struct {
	Url string `json:"url"`
}

// PageWrapper 分页列表
type PageWrapper[T any] struct {
	List  []T   `json:"list"`
	Total int64 `json:"total"`
}
