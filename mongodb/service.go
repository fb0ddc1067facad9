package mongodb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gocrud/lifecycle"
	"github.com/gocrud/lifecycle/logging"
	"github.com/gocrud/mgo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Options MongoDB 客户端配置选项
type Options struct {
	Name        string
	Uri         string
	Username    string
	Password    string
	MaxPoolSize uint64
	MinPoolSize uint64
	Timeout     time.Duration
	Logger      logging.Logger
}

// NewDefaultOptions 创建默认配置
func NewDefaultOptions(name string, uri string) *Options {
	return &Options{
		Name:        name,
		Uri:         uri,
		MaxPoolSize: 100,
		MinPoolSize: 5,
		Timeout:     10 * time.Second,
		Logger:      logging.NewNopLogger(),
	}
}

// Validate 验证配置
func (o *Options) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("mongo service name is required")
	}
	if o.Uri == "" {
		return fmt.Errorf("mongo uri is required")
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("mongo timeout must be positive")
	}
	return nil
}

// Service MongoDB 客户端服务，实现 lifecycle.Service。
// Start 建立连接，Stop 断开连接。
type Service struct {
	lifecycle.Base

	opts   Options
	logger logging.Logger

	// mu 串行化 Start/Stop：Stop 必须等启动完成（client 已赋值或已失败）
	mu     sync.Mutex
	client *mgo.Client
}

// NewService 创建 MongoDB 客户端服务
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
func (s *Service) Client() *mgo.Client {
	return s.client
}

// Start 建立连接
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.BeginStart(); err != nil {
		return err
	}

	s.logger.Info("Connecting to mongodb")

	clientOpts := options.Client()
	if s.opts.Username != "" || s.opts.Password != "" {
		clientOpts.SetAuth(options.Credential{
			Username: s.opts.Username,
			Password: s.opts.Password,
		})
	}
	if s.opts.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(s.opts.MaxPoolSize)
	}
	if s.opts.MinPoolSize > 0 {
		clientOpts.SetMinPoolSize(s.opts.MinPoolSize)
	}
	clientOpts.SetConnectTimeout(s.opts.Timeout)

	connectCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	client, err := mgo.NewClient(connectCtx, s.opts.Uri, clientOpts)
	if err != nil {
		return s.FailStart(fmt.Errorf("failed to connect to mongodb: %w", err))
	}

	s.client = client
	s.MarkRunning()
	s.logger.Info("Mongodb connected")
	return nil
}

// Stop 断开连接
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.BeginStop(); err != nil {
		return err
	}

	if s.client != nil {
		disconnectCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
		if err := s.client.Disconnect(disconnectCtx); err != nil {
			return s.FailStop(fmt.Errorf("failed to disconnect mongodb: %w", err))
		}
	}

	if err := s.MarkTerminated(); err != nil {
		return err
	}
	s.logger.Info("Mongodb disconnected")
	return nil
}
