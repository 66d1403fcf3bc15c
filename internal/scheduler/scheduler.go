package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Warmer 由 processor.Aggregator 实现
type Warmer interface {
	Warm(ctx context.Context, limit int) error
}

// Scheduler 定时以 refresh 方式重建各分类缓存，让用户请求尽量命中缓存
type Scheduler struct {
	cron   *cron.Cron
	warmer Warmer
	limit  int
}

func New(spec string, warmer Warmer, limit int) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:   c,
		warmer: warmer,
		limit:  limit,
	}

	_, err := c.AddFunc(spec, s.runOnce)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// 延迟执行首轮预热，避免与启动后的首批请求争抢外部接口
	const startupDelay = 15 * time.Second
	time.AfterFunc(startupDelay, func() {
		go s.runOnce()
	})
}

// Stop 停止调度并等待正在运行的任务结束
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce 对外暴露的单次执行入口，方便手动触发
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	log.Println("start cache warm job...")
	start := time.Now()
	if err := s.warmer.Warm(context.Background(), s.limit); err != nil {
		log.Printf("cache warm error: %v", err)
		return
	}
	log.Printf("cache warm done in %s", time.Since(start).Round(time.Millisecond))
}
