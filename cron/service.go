package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gocrud/lifecycle"
	"github.com/gocrud/lifecycle/logging"
	"github.com/robfig/cron/v3"
)

// Service Cron 定时任务服务，实现 lifecycle.Service
type Service struct {
	lifecycle.Base

	cron   *cron.Cron
	logger logging.Logger

	// mu 保护 jobs，并串行化 Start/Stop
	mu   sync.Mutex
	jobs map[string]cron.EntryID // 任务名称到任务ID的映射
}

// options Cron 服务配置选项
type options struct {
	// Name 服务名称
	Name string
	// Location 时区设置，默认 UTC
	Location *time.Location
	// EnableSeconds 是否启用秒级精度（默认分钟级）
	EnableSeconds bool
	// Logger 日志记录器
	Logger logging.Logger
}

// Option 用于配置 Cron 服务
type Option func(*options)

// WithName 设置服务名称
func WithName(name string) Option {
	return func(o *options) {
		o.Name = name
	}
}

// WithSeconds 启用秒级精度
func WithSeconds() Option {
	return func(o *options) {
		o.EnableSeconds = true
	}
}

// WithLocation 设置时区
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.Location = loc
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		o.Logger = logger
	}
}

// NewService 创建 Cron 服务
func NewService(opts ...Option) *Service {
	opt := &options{
		Name:     "cron",
		Location: time.UTC,
		Logger:   logging.NewNopLogger(),
	}
	for _, o := range opts {
		o(opt)
	}

	cronOpts := []cron.Option{
		cron.WithLocation(opt.Location),
		cron.WithChain(cron.Recover(newCronLogger(opt.Logger))),
	}
	if opt.EnableSeconds {
		cronOpts = append(cronOpts, cron.WithSeconds())
	}

	return &Service{
		Base:   lifecycle.NewBase(opt.Name),
		cron:   cron.New(cronOpts...),
		logger: opt.Logger,
		jobs:   make(map[string]cron.EntryID),
	}
}

// AddJob 添加定时任务
// spec: cron 表达式，如 "*/5 * * * *" (每5分钟)
// name: 任务名称（用于管理和日志）
func (s *Service) AddJob(spec, name string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("cron job '%s' already registered", name)
	}

	entryID, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("failed to add cron job '%s': %w", name, err)
	}

	s.jobs[name] = entryID
	s.logger.Info("Cron job registered",
		logging.Field{Key: "job", Value: name},
		logging.Field{Key: "spec", Value: spec})
	return nil
}

// RemoveJob 移除定时任务
func (s *Service) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
		s.logger.Info("Cron job removed", logging.Field{Key: "job", Value: name})
	}
}

// Start 启动调度器
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.BeginStart(); err != nil {
		return err
	}

	s.logger.Info("Cron service starting", logging.Field{Key: "jobs", Value: len(s.jobs)})
	s.cron.Start()

	s.MarkRunning()
	return nil
}

// Stop 停止调度器，等待正在运行的任务完成，时长受 ctx 限制
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.BeginStop(); err != nil {
		return err
	}

	s.logger.Info("Cron service stopping")

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		s.logger.Warn("Cron service stop timeout")
		return s.FailStop(ctx.Err())
	}

	if err := s.MarkTerminated(); err != nil {
		return err
	}
	s.logger.Info("Cron service stopped")
	return nil
}

// cronLogger 适配器：将本库日志接口适配到 cron 的日志接口
type cronLogger struct {
	logger logging.Logger
}

func newCronLogger(logger logging.Logger) cron.Logger {
	return &cronLogger{logger: logger}
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, convertToFields(keysAndValues)...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := convertToFields(keysAndValues)
	fields = append(fields, logging.Field{Key: "error", Value: err.Error()})
	l.logger.Error(msg, fields...)
}

func convertToFields(keysAndValues []interface{}) []logging.Field {
	fields := make([]logging.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key := fmt.Sprintf("%v", keysAndValues[i])
		fields = append(fields, logging.Field{Key: key, Value: keysAndValues[i+1]})
	}
	return fields
}
