package etcd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gocrud/lifecycle"
	"github.com/gocrud/lifecycle/logging"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// Options etcd 客户端配置选项
type Options struct {
	Name               string        // 服务名称
	Endpoints          []string      // etcd 服务器地址列表
	DialTimeout        time.Duration // 连接超时时间
	Username           string        // 用户名（可选）
	Password           string        // 密码（可选）
	AutoSyncInterval   time.Duration // 自动同步间隔（可选）
	MaxCallSendMsgSize int           // 最大发送消息大小（可选）
	MaxCallRecvMsgSize int           // 最大接收消息大小（可选）
	Logger             logging.Logger
}

// NewDefaultOptions 创建默认配置
func NewDefaultOptions(name string) *Options {
	return &Options{
		Name:        name,
		Endpoints:   []string{"localhost:2379"},
		DialTimeout: 5 * time.Second,
		Logger:      logging.NewNopLogger(),
	}
}

// Validate 验证配置
func (o *Options) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("etcd service name is required")
	}
	if len(o.Endpoints) == 0 {
		return fmt.Errorf("etcd endpoints are required")
	}
	if o.DialTimeout <= 0 {
		return fmt.Errorf("etcd dial timeout must be positive")
	}
	return nil
}

// Service etcd 客户端服务，实现 lifecycle.Service。
// etcd 客户端的连接是惰性建立的，Start 通过探测首个端点的
// Status 确认集群可达，Stop 关闭客户端。
type Service struct {
	lifecycle.Base

	opts   Options
	logger logging.Logger

	// mu 串行化 Start/Stop：Stop 必须等启动完成（client 已赋值或已失败）
	mu     sync.Mutex
	client *clientv3.Client
}

// NewService 创建 etcd 客户端服务
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
func (s *Service) Client() *clientv3.Client {
	return s.client
}

// Start 创建客户端并探测集群可达性
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.BeginStart(); err != nil {
		return err
	}

	s.logger.Info("Connecting to etcd",
		logging.Field{Key: "endpoints", Value: s.opts.Endpoints})

	config := clientv3.Config{
		Endpoints:   s.opts.Endpoints,
		DialTimeout: s.opts.DialTimeout,
	}
	if s.opts.Username != "" {
		config.Username = s.opts.Username
		config.Password = s.opts.Password
	}
	if s.opts.AutoSyncInterval > 0 {
		config.AutoSyncInterval = s.opts.AutoSyncInterval
	}
	if s.opts.MaxCallSendMsgSize > 0 {
		config.MaxCallSendMsgSize = s.opts.MaxCallSendMsgSize
	}
	if s.opts.MaxCallRecvMsgSize > 0 {
		config.MaxCallRecvMsgSize = s.opts.MaxCallRecvMsgSize
	}

	client, err := clientv3.New(config)
	if err != nil {
		return s.FailStart(fmt.Errorf("failed to create etcd client: %w", err))
	}

	statusCtx, cancel := context.WithTimeout(ctx, s.opts.DialTimeout)
	defer cancel()

	if _, err := client.Status(statusCtx, s.opts.Endpoints[0]); err != nil {
		client.Close()
		return s.FailStart(fmt.Errorf("failed to reach etcd endpoint '%s': %w", s.opts.Endpoints[0], err))
	}

	s.client = client
	s.MarkRunning()
	s.logger.Info("Etcd connected")
	return nil
}

// Stop 关闭客户端
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.BeginStop(); err != nil {
		return err
	}

	if s.client != nil {
		if err := s.client.Close(); err != nil {
			return s.FailStop(fmt.Errorf("failed to close etcd client: %w", err))
		}
	}

	if err := s.MarkTerminated(); err != nil {
		return err
	}
	s.logger.Info("Etcd client closed")
	return nil
}
