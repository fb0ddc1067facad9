package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gocrud/lifecycle"
	"github.com/gocrud/lifecycle/logging"
	"gorm.io/gorm"
)

// Options 数据库配置选项
type Options struct {
	Name         string
	Dialector    gorm.Dialector
	GormConfig   *gorm.Config
	MaxIdleConns int
	MaxOpenConns int
	MaxLifetime  time.Duration
	AutoMigrate  []any // 需要自动迁移的模型
	Logger       logging.Logger
}

// NewDefaultOptions 创建默认配置
func NewDefaultOptions(name string, dialector gorm.Dialector) *Options {
	return &Options{
		Name:         name,
		Dialector:    dialector,
		GormConfig:   &gorm.Config{},
		MaxIdleConns: 10,
		MaxOpenConns: 100,
		MaxLifetime:  time.Hour,
		AutoMigrate:  make([]any, 0),
		Logger:       logging.NewNopLogger(),
	}
}

// Validate 验证配置
func (o *Options) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("database service name is required")
	}
	if o.Dialector == nil {
		return fmt.Errorf("database dialector is required")
	}
	return nil
}

// Service 数据库服务，实现 lifecycle.Service。
// Start 打开连接并配置连接池、执行自动迁移，Stop 关闭连接。
type Service struct {
	lifecycle.Base

	opts   Options
	logger logging.Logger

	// mu 串行化 Start/Stop：Stop 必须等启动完成（db 已赋值或已失败）
	mu sync.Mutex
	db *gorm.DB
}

// NewService 创建数据库服务
func NewService(opts Options) (*Service, error) {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.GormConfig == nil {
		opts.GormConfig = &gorm.Config{}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		Base:   lifecycle.NewBase(opts.Name),
		opts:   opts,
		logger: opts.Logger,
	}, nil
}

// DB 返回底层 gorm 实例（Running 之后有效）
func (s *Service) DB() *gorm.DB {
	return s.db
}

// Start 打开数据库连接
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.BeginStart(); err != nil {
		return err
	}

	s.logger.Info("Opening database", logging.Field{Key: "name", Value: s.Name()})

	db, err := gorm.Open(s.opts.Dialector, s.opts.GormConfig)
	if err != nil {
		return s.FailStart(fmt.Errorf("failed to open database: %w", err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return s.FailStart(fmt.Errorf("failed to get sql.DB: %w", err))
	}

	if s.opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(s.opts.MaxIdleConns)
	}
	if s.opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(s.opts.MaxOpenConns)
	}
	if s.opts.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(s.opts.MaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return s.FailStart(fmt.Errorf("failed to ping database: %w", err))
	}

	if len(s.opts.AutoMigrate) > 0 {
		if err := db.AutoMigrate(s.opts.AutoMigrate...); err != nil {
			sqlDB.Close()
			return s.FailStart(fmt.Errorf("auto migrate failed: %w", err))
		}
	}

	s.db = db
	s.MarkRunning()
	s.logger.Info("Database opened")
	return nil
}

// Stop 关闭数据库连接
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.BeginStop(); err != nil {
		return err
	}

	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return s.FailStop(fmt.Errorf("failed to get sql.DB: %w", err))
		}
		if err := sqlDB.Close(); err != nil {
			return s.FailStop(fmt.Errorf("failed to close database: %w", err))
		}
	}

	if err := s.MarkTerminated(); err != nil {
		return err
	}
	s.logger.Info("Database closed")
	return nil
}
