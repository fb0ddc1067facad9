package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gocrud/lifecycle"
	"github.com/gocrud/lifecycle/logging"
	"github.com/redis/go-redis/v9"
)

// Options Redis 客户端配置选项
type Options struct {
	Name         string        // 服务名称
	Addr         string        // Redis 服务器地址 (host:port)
	Password     string        // 密码（可选）
	DB           int           // 数据库编号
	DialTimeout  time.Duration // 连接超时时间
	ReadTimeout  time.Duration // 读取超时时间
	WriteTimeout time.Duration // 写入超时时间
	PoolSize     int           // 连接池大小
	MinIdleConns int           // 最小空闲连接数
	MaxRetries   int           // 最大重试次数
	Logger       logging.Logger
}

// NewDefaultOptions 创建默认配置
func NewDefaultOptions(name string) *Options {
	return &Options{
		Name:         name,
		Addr:         "localhost:6379",
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		Logger:       logging.NewNopLogger(),
	}
}

// Validate 验证配置
func (o *Options) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("redis service name is required")
	}
	if o.Addr == "" {
		return fmt.Errorf("redis address is required")
	}
	if o.DB < 0 {
		return fmt.Errorf("redis database number must be non-negative")
	}
	if o.DialTimeout <= 0 {
		return fmt.Errorf("redis dial timeout must be positive")
	}
	return nil
}

// Service Redis 客户端服务，实现 lifecycle.Service。
// Start 建立连接并 Ping 验证可用性，Stop 关闭连接。
type Service struct {
	lifecycle.Base

	opts   Options
	logger logging.Logger

	// mu 串行化 Start/Stop：Stop 必须等启动完成（client 已赋值或已失败）
	mu     sync.Mutex
	client *redis.Client
}

// NewService 创建 Redis 客户端服务
func NewService(opts Options) (*Service, error) {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
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

// Client 返回底层客户端（Running 之后有效）
func (s *Service) Client() *redis.Client {
	return s.client
}

// Start 建立连接并验证可用性
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.BeginStart(); err != nil {
		return err
	}

	s.logger.Info("Connecting to redis", logging.Field{Key: "addr", Value: s.opts.Addr})

	client := redis.NewClient(&redis.Options{
		Addr:         s.opts.Addr,
		Password:     s.opts.Password,
		DB:           s.opts.DB,
		DialTimeout:  s.opts.DialTimeout,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		PoolSize:     s.opts.PoolSize,
		MinIdleConns: s.opts.MinIdleConns,
		MaxRetries:   s.opts.MaxRetries,
	})

	pingCtx, cancel := context.WithTimeout(ctx, s.opts.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return s.FailStart(fmt.Errorf("failed to connect to redis: %w", err))
	}

	s.client = client
	s.MarkRunning()
	s.logger.Info("Redis connected", logging.Field{Key: "addr", Value: s.opts.Addr})
	return nil
}

// Stop 关闭连接
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.BeginStop(); err != nil {
		return err
	}

	if s.client != nil {
		if err := s.client.Close(); err != nil {
			return s.FailStop(fmt.Errorf("failed to close redis client: %w", err))
		}
	}

	if err := s.MarkTerminated(); err != nil {
		return err
	}
	s.logger.Info("Redis client closed")
	return nil
}
