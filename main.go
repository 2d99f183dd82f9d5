package main

import (
	"log"
	"net/http"

	"github.com/chaos-io/cutout/config"
	"github.com/chaos-io/cutout/handler"
	"github.com/chaos-io/cutout/middleware"
	"github.com/chaos-io/cutout/rembg"
	"github.com/chaos-io/cutout/service"
	"github.com/chaos-io/cutout/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cfg := config.New()

	if err := util.InitLogger(cfg.Server.Mode); err != nil {
		log.Fatal("failed to init logger: ", err)
	}
	defer util.Sync()

	gin.SetMode(cfg.Server.Mode)

	engine := rembg.NewEngine(cfg.Rembg.BaseURL, cfg.Rembg.Model)
	processor := service.NewProcessor(engine, &cfg.Rembg)

	var monitor *service.Monitor
	if cfg.Monitor.Enabled {
		monitor = service.NewMonitor(engine, cfg.Monitor.Spec)
		if err := monitor.Start(); err != nil {
			log.Fatal("failed to start engine monitor: ", err)
		}
		defer monitor.Stop()
	}

	h := handler.NewImageHandler(cfg, processor, monitor)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	// multipart 内存上限跟上传大小限制对齐
	r.MaxMultipartMemory = cfg.Upload.MaxSize

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.POST("/remove-background", h.RemoveBackground)
		api.POST("/apply-background", h.ApplyBackground)
		api.POST("/process-image", h.ProcessImage)
	}

	// 浏览器前端
	r.Static("/static", "./static")
	r.StaticFile("/", "./static/index.html")

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	util.Logger.Info("server starting",
		zap.String("addr", cfg.Server.Port),
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("engine", cfg.Rembg.BaseURL))

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server error: ", err)
	}
}
