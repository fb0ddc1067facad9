package hosting

import (
	"context"
	"time"

	"github.com/gocrud/lifecycle/logging"
)

// TaskFunc 定时执行的任务
type TaskFunc func(ctx context.Context) error

// TimedService 定时服务：按固定间隔执行任务，直到被停止。
// 任务返回的错误只记录日志，不会中断后续调度。
type TimedService struct {
	*BackgroundService
}

// NewTimedService 创建定时服务
func NewTimedService(name string, interval time.Duration, task TaskFunc, opts ...Option) *TimedService {
	s := &TimedService{}
	s.BackgroundService = NewBackgroundService(name, func(ctx context.Context) error {
		return s.loop(ctx, interval, task)
	}, opts...)
	return s
}

func (s *TimedService) loop(ctx context.Context, interval time.Duration, task TaskFunc) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := task(ctx); err != nil {
				s.logger.Error("Timed task failed",
					logging.Field{Key: "service", Value: s.Name()},
					logging.Field{Key: "error", Value: err.Error()})
			}
		case <-ctx.Done():
			return nil
		}
	}
}
