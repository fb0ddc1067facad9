package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// RunOption 用于配置 Run
type RunOption func(*runOptions)

type runOptions struct {
	shutdownTimeout time.Duration
}

// WithShutdownTimeout 设置优雅停止的超时时间，默认 30 秒
func WithShutdownTimeout(d time.Duration) RunOption {
	return func(o *runOptions) {
		o.shutdownTimeout = d
	}
}

// Run 启动管理器中的所有服务并阻塞运行。
//
// 收到 SIGINT/SIGTERM 或 ctx 被取消时，在超时范围内停止所有
// 服务并等待它们进入终态。返回启动或停止阶段的聚合错误。
func Run(ctx context.Context, m *ServiceManager, opts ...RunOption) error {
	o := &runOptions{
		shutdownTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}

	if err := m.StartAll(ctx); err != nil {
		// 已经启动成功的服务仍需停掉
		stopCtx, cancel := context.WithTimeout(context.Background(), o.shutdownTimeout)
		defer cancel()
		m.StopAll(stopCtx)
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case <-ctx.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), o.shutdownTimeout)
	defer cancel()

	if err := m.StopAll(stopCtx); err != nil {
		return err
	}
	_, err := m.AwaitTerminationAll(stopCtx)
	return err
}
