package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/pastelog/internal/db"
	"github.com/pastelog/internal/render"
	"github.com/pastelog/internal/service"
	"gorm.io/gorm"
)

// 会话 Cookie 由认证层写入，本核心只读取；
// redirect_after_auth 用于认领流程回跳，15 分钟过期。
const (
	authCookieName       = "auth_id"
	redirectCookieName   = "redirect_after_auth"
	redirectCookieMaxAge = 15 * 60
	sessionCookieMaxAge  = 30 * 24 * 60 * 60
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	posts    *service.PostService
	users    *service.UserService
	renderer *render.Renderer
	baseURL  string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, renderer *render.Renderer, baseURL string) *API {
	return &API{
		db:       gdb,
		posts:    service.NewPostService(gdb, renderer),
		users:    service.NewUserService(gdb),
		renderer: renderer,
		baseURL:  baseURL,
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}

// currentUser 从 auth_id Cookie 解析当前登录用户，解析不出时返回 nil。
// 令牌才是编辑凭证，会话身份只影响页面呈现与认领归属。
func (a *API) currentUser(c *gin.Context) *db.User {
	id, err := c.Cookie(authCookieName)
	if err != nil || id == "" {
		return nil
	}

	user, err := a.users.UserFromSession(id)
	if err != nil {
		return nil
	}
	return user
}
