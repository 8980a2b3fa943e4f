package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/pastelog/internal/config"
	"github.com/pastelog/internal/db"
	"github.com/pastelog/internal/handler"
	"github.com/pastelog/internal/render"
	"github.com/pastelog/internal/router"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 渲染器配置在启动时构建一次，之后只读
	renderer := render.New()
	api := handler.NewAPI(db.DB, renderer, cfg.SiteBaseURL)

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, cfg.TemplateGlob)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
