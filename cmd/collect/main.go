package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"github.com/LJTian/NewsLens/internal/app"
	"github.com/LJTian/NewsLens/internal/config"
	"github.com/joho/godotenv"
)

// 一个仅执行一次缓存预热的命令行入口：适合手动触发或交给外部定时任务
func main() {
	if err := godotenvLoad(); err != nil {
		log.Printf("warn: load .env: %v", err)
	}
	cfg := config.Load()

	limit := flag.Int("limit", cfg.WarmLimit, "articles per feed (1-10)")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall timeout")
	flag.Parse()
	if *limit < 1 || *limit > 10 {
		log.Fatalf("invalid -limit %d, must be between 1 and 10", *limit)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("init app failed: %v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	err = a.Aggregator.Warm(ctx, *limit)
	log.Printf("warm finished in %s", time.Since(start).Round(time.Millisecond))
	if err != nil {
		log.Printf("warm error: %v", err)
		a.Close()
		os.Exit(1)
	}
}

func godotenvLoad() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
