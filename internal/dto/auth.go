package dto

// RegisterReq 用户注册
type RegisterReq struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginReq 用户登录，username 字段同时接受用户名或邮箱
type LoginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserInfo struct {
	Id       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type LoginResData struct {
	Token     string   `json:"token"`
	ExpiresIn int64    `json:"expires_in"` // Seconds
	User      UserInfo `json:"user"`
}

type RefreshResData struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}
