package hosting

import (
	"context"
	"errors"
	"sync"

	"github.com/gocrud/lifecycle"
	"github.com/gocrud/lifecycle/logging"
)

// RunFunc 后台服务的主循环。
// 应持续运行直到 ctx 被取消；返回非 nil 错误会使服务进入 Failed。
type RunFunc func(ctx context.Context) error

// BackgroundService 把一个主循环函数包装成 lifecycle.Service。
// 框架负责在独立的 goroutine 中运行主循环，调用方无需自己管理 goroutine。
type BackgroundService struct {
	lifecycle.Base

	run    RunFunc
	logger logging.Logger

	// mu 保证 BeginStart 与 cancel 赋值、BeginStop 与 cancel 读取
	// 各自构成原子的临界区：BeginStop 一旦成功（状态已是
	// Starting/Running），cancel 必然已经赋值
	mu     sync.Mutex
	cancel context.CancelFunc
	doneCh chan struct{}
}

// Option 用于配置 hosting 包中的服务
type Option func(*BackgroundService)

// WithLogger 设置日志记录器，默认不输出任何日志
func WithLogger(logger logging.Logger) Option {
	return func(s *BackgroundService) {
		s.logger = logger
	}
}

// NewBackgroundService 创建后台服务
func NewBackgroundService(name string, run RunFunc, opts ...Option) *BackgroundService {
	s := &BackgroundService{
		Base:   lifecycle.NewBase(name),
		run:    run,
		logger: logging.NewNopLogger(),
		doneCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start 启动主循环。
// 主循环在独立的 goroutine 中运行，本方法在其就绪后立即返回。
func (s *BackgroundService) Start(ctx context.Context) error {
	s.mu.Lock()
	if err := s.BeginStart(); err != nil {
		s.mu.Unlock()
		return err
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		defer close(s.doneCh)

		err := s.run(runCtx)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("Background service run loop failed",
				logging.Field{Key: "service", Value: s.Name()},
				logging.Field{Key: "error", Value: err.Error()})
			s.MarkFailed(err)
			return
		}

		// 主循环自行结束：视为自我终止。
		// 两步转换均为 CAS，若并发的 Stop 已推进状态则自然失败
		s.BeginStop()
		s.MarkTerminated()
	}()

	// 并发的 Stop 已把状态推进到 Stopping 时由其完成收尾
	if err := s.MarkRunning(); err == nil {
		s.logger.Info("Background service started", logging.Field{Key: "service", Value: s.Name()})
	}
	return nil
}

// Stop 取消主循环并等待其退出，等待时长受 ctx 限制
func (s *BackgroundService) Stop(ctx context.Context) error {
	s.mu.Lock()
	if err := s.BeginStop(); err != nil {
		s.mu.Unlock()
		return err
	}
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	select {
	case <-s.doneCh:
	case <-ctx.Done():
		s.logger.Warn("Background service stop timeout",
			logging.Field{Key: "service", Value: s.Name()})
		return s.FailStop(ctx.Err())
	}

	// 终态通常由主循环的收尾逻辑先行达成；只要是干净的 Terminated
	// 就视为停止成功
	if err := s.MarkTerminated(); err != nil && s.Status() != lifecycle.StatusTerminated {
		// 主循环在停止期间返回了错误，状态已是 Failed
		return &lifecycle.StopError{Service: s.Name(), Err: s.Flag().Err()}
	}
	s.logger.Info("Background service stopped", logging.Field{Key: "service", Value: s.Name()})
	return nil
}
