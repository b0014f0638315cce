package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/LJTian/CompanyNewsHub/internal/pipeline"
	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron     *cron.Cron
	pipeline *pipeline.Pipeline
	// timeout 单轮运行的上限
	timeout time.Duration
}

func New(spec string, p *pipeline.Pipeline) (*Scheduler, error) {
	// 上一轮未结束时跳过本次触发
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	s := &Scheduler{
		cron:     c,
		pipeline: p,
		timeout:  2 * time.Hour,
	}

	_, err := c.AddFunc(spec, s.runOnce)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度并等待正在运行的任务结束
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Entries 当前注册的任务，便于查看下次执行时间
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// RunOnce 对外暴露的单次执行入口，方便手动触发采集
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	reports, err := s.pipeline.Run(ctx)
	written := 0
	for _, r := range reports {
		if r.Written {
			written++
		}
	}
	if err != nil {
		log.Printf("collect job finished with errors: %v", err)
	}
	log.Printf("collect job: %d/%d documents written", written, len(reports))
}
