package request

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email,max=100"`
	Password    string `json:"password" binding:"required,min=6,max=64"`
	DisplayName string `json:"display_name" binding:"required,max=50"`
}

// LoginRequest 邮箱密码登录
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest 刷新 Access Token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
