package lifecycle

import (
	"context"
	"sync"

	"github.com/gocrud/lifecycle/logging"
)

// ServiceStatus 单个受管服务的状态快照
type ServiceStatus struct {
	Name   string
	Status Status
	Err    error // Failed 状态附带的错误详情，其余状态为 nil
}

// ServiceManager 管理一组 Service 的组合器。
//
// 这是一个简单的组合模式：调用方把所有 Service 实例注册给
// ServiceManager，由它统一编排启动和停止。批量操作对每个成员
// 都会执行到底——单个成员失败不会阻止其余成员完成各自的生命周期
// 步骤，失败被收集进 *AggregateError 返回。
//
// ServiceManager 自身也实现了 Service 接口，因此可以进一步组合
// （把一个 manager 注册进另一个 manager）。
type ServiceManager struct {
	Base

	logger logging.Logger

	mu       sync.Mutex
	services []Service
	started  bool
}

// ManagerOption 用于配置 ServiceManager
type ManagerOption func(*ServiceManager)

// WithName 设置管理器名称（用于日志和聚合错误）
func WithName(name string) ManagerOption {
	return func(m *ServiceManager) {
		m.Base = NewBase(name)
	}
}

// WithLogger 设置日志记录器，默认不输出任何日志
func WithLogger(logger logging.Logger) ManagerOption {
	return func(m *ServiceManager) {
		m.logger = logger
	}
}

// WithServices 注册初始服务集合
func WithServices(services ...Service) ManagerOption {
	return func(m *ServiceManager) {
		m.services = append(m.services, services...)
	}
}

// NewManager 创建服务管理器
func NewManager(opts ...ManagerOption) *ServiceManager {
	m := &ServiceManager{
		Base:     NewBase("service-manager"),
		logger:   logging.NewNopLogger(),
		services: make([]Service, 0),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register 注册一个服务。
// 只允许在首次 StartAll 之前调用，之后返回 *InvalidStateError。
func (m *ServiceManager) Register(svc Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return &InvalidStateError{Service: m.Name(), Op: "register", State: m.Status()}
	}
	m.services = append(m.services, svc)
	return nil
}

// snapshot 返回服务集合的只读副本。
// 首次 StartAll 之后集合不再变化，副本仅用于摆脱锁的持有。
func (m *ServiceManager) snapshot() []Service {
	m.mu.Lock()
	defer m.mu.Unlock()
	services := make([]Service, len(m.services))
	copy(services, m.services)
	return services
}

// StartAll 启动所有已注册的服务。
//
// 每个服务在独立的 goroutine 中启动，全部返回后本方法才返回
// （同步屏障语义）。单个服务启动失败不会阻止其它服务启动，
// 所有失败汇总为 *AggregateError 返回；全部成功时返回 nil。
func (m *ServiceManager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return &InvalidStateError{Service: m.Name(), Op: "start", State: m.Status()}
	}
	m.started = true
	m.mu.Unlock()

	m.BeginStart()

	services := m.snapshot()
	m.logger.Info("Starting services", logging.Field{Key: "count", Value: len(services)})

	errCh := make(chan error, len(services))
	var wg sync.WaitGroup
	for _, svc := range services {
		wg.Add(1)
		go func(svc Service) {
			defer wg.Done()
			if err := svc.Start(ctx); err != nil {
				m.logger.Error("Service failed to start",
					logging.Field{Key: "service", Value: svc.Name()},
					logging.Field{Key: "error", Value: err.Error()})
				errCh <- err
				return
			}
			m.logger.Info("Service started", logging.Field{Key: "service", Value: svc.Name()})
		}(svc)
	}
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		agg := &AggregateError{Op: "start", Errors: errs}
		m.MarkFailed(agg)
		return agg
	}

	m.MarkRunning()
	m.logger.Info("All services started")
	return nil
}

// StopAll 停止所有已注册的服务，按注册的逆序发起。
//
// 与 StartAll 对称：单个服务停止失败不会阻止其它服务停止，
// 失败汇总为 *AggregateError。已处于终态或从未离开 Idle 的成员
// 没有可执行的停止迁移，直接跳过。
// 在 StartAll 之前调用返回 *InvalidStateError。
func (m *ServiceManager) StopAll(ctx context.Context) error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return &InvalidStateError{Service: m.Name(), Op: "stop", State: m.Status()}
	}
	m.mu.Unlock()

	// 部分启动失败时自身已是 Failed，仍然继续停掉存活的成员
	m.BeginStop()

	services := m.snapshot()
	m.logger.Info("Stopping services", logging.Field{Key: "count", Value: len(services)})

	errCh := make(chan error, len(services))
	var wg sync.WaitGroup
	for i := len(services) - 1; i >= 0; i-- {
		svc := services[i]
		if s := svc.Status(); s.Terminal() || s == StatusIdle {
			continue
		}
		wg.Add(1)
		go func(svc Service) {
			defer wg.Done()
			if err := svc.Stop(ctx); err != nil {
				m.logger.Error("Service failed to stop",
					logging.Field{Key: "service", Value: svc.Name()},
					logging.Field{Key: "error", Value: err.Error()})
				errCh <- err
				return
			}
			m.logger.Info("Service stopped", logging.Field{Key: "service", Value: svc.Name()})
		}(svc)
	}
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		agg := &AggregateError{Op: "stop", Errors: errs}
		m.MarkFailed(agg)
		return agg
	}

	m.MarkTerminated()
	m.logger.Info("All services stopped")
	return nil
}

// AwaitTerminationAll 阻塞直到所有已注册的服务进入终态，
// 返回届时每个服务的最终状态（按注册顺序）。
// ctx 取消时返回当前快照和 ctx.Err()。
func (m *ServiceManager) AwaitTerminationAll(ctx context.Context) ([]ServiceStatus, error) {
	for _, svc := range m.snapshot() {
		if _, err := svc.AwaitTermination(ctx); err != nil {
			return m.StatusAll(), err
		}
	}
	return m.StatusAll(), nil
}

// StatusAll 返回每个已注册服务的状态快照（按注册顺序），不会阻塞
func (m *ServiceManager) StatusAll() []ServiceStatus {
	services := m.snapshot()
	statuses := make([]ServiceStatus, 0, len(services))
	for _, svc := range services {
		st := ServiceStatus{Name: svc.Name(), Status: svc.Status()}
		if f, ok := svc.(interface{ Flag() *StatusFlag }); ok {
			st.Err = f.Flag().Err()
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// Start 实现 Service 接口，等价于 StartAll
func (m *ServiceManager) Start(ctx context.Context) error {
	return m.StartAll(ctx)
}

// Stop 实现 Service 接口，等价于 StopAll
func (m *ServiceManager) Stop(ctx context.Context) error {
	return m.StopAll(ctx)
}
