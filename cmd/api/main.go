package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/LJTian/NewsLens/internal/api"
	"github.com/LJTian/NewsLens/internal/app"
	"github.com/LJTian/NewsLens/internal/config"
	"github.com/LJTian/NewsLens/internal/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env 可选，不存在时只用进程环境变量
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warn: load .env: %v", err)
	}
	cfg := config.Load()

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("init app failed: %v", err)
	}
	defer a.Close()

	// 可选：定时以 refresh 方式预热各分类缓存
	var warm *scheduler.Scheduler
	if cfg.WarmCronSpec != "" {
		warm, err = scheduler.New(cfg.WarmCronSpec, a.Aggregator, cfg.WarmLimit)
		if err != nil {
			log.Fatalf("init scheduler failed: %v", err)
		}
		warm.Start()
	}

	// API
	r := gin.Default()
	// 若配置了全局访问密码，则启用 Basic Auth 保护（/health 仍然免认证）
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(api.BasicAuth(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}

	// 未配置归档时必须传入字面量 nil，接口里不能装 nil 指针
	var archive api.ArchiveReader
	if a.Archive != nil {
		archive = a.Archive
	}
	api.NewServer(a.Aggregator, a.Cache, archive).RegisterRoutes(r)

	// 若配置了前端目录，则托管 SPA 静态文件并做 fallback
	if cfg.WebRoot != "" {
		assetsDir := filepath.Join(cfg.WebRoot, "assets")
		indexFile := filepath.Join(cfg.WebRoot, "index.html")
		r.Static("/assets", assetsDir)
		r.NoRoute(func(c *gin.Context) {
			if c.Request.Method != http.MethodGet {
				c.Status(http.StatusNotFound)
				return
			}
			// SPA：未匹配 API 的 GET 均返回 index.html
			c.File(indexFile)
		})
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("starting api server at %s ...", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server exit: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down ...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	if warm != nil {
		select {
		case <-warm.Stop().Done():
		case <-ctx.Done():
			log.Printf("warn: cache warm job still running at exit")
		}
	}
}
