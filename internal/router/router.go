package router

import (
	"github.com/gin-gonic/gin"
	"github.com/pastelog/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, templateGlob string) *gin.Engine {
	r := gin.Default()

	r.LoadHTMLGlob(templateGlob)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	r.GET("/", api.ShowHome)

	// 帖子 API
	r.GET("/api/check-slug/:slug", api.CheckSlug)
	r.POST("/api/preview", api.PreviewPost)
	r.POST("/publish", api.PublishPost)
	r.GET("/success", api.ShowSuccess)

	// 账号与会话
	r.GET("/register", api.ShowRegisterPage)
	r.POST("/register", api.Register)
	r.GET("/login", api.ShowLoginPage)
	r.POST("/login", api.Login)
	r.POST("/logout", api.Logout)

	// 帖子动态路由，必须放在静态路由之后
	r.GET("/claim/:slug", api.ClaimPost)
	r.GET("/:slug", api.ShowPost)
	r.GET("/:slug/edit/:token", api.ShowEditPage)
	r.POST("/:slug/edit/:token", api.UpdatePost)

	return r
}
