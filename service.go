package lifecycle

import (
	"context"
)

// Service 定义了一个具有启动和停止生命周期的长期运行组件。
// 这是本库中所有服务的标准接口。
//
// 状态机：Idle → Starting → Running → Stopping → Terminated，
// 任意非终态可进入 Failed。两个终态不再发生任何迁移。
type Service interface {
	// Name 服务名称（用于日志和聚合错误）
	Name() string

	// Start 启动服务：Idle → Starting → Running。
	// 启动逻辑失败时状态进入 Failed 并返回 *StartError；
	// 在 Idle 以外的状态调用返回 *InvalidStateError 且不改变状态。
	Start(ctx context.Context) error

	// Stop 停止服务：Running|Starting → Stopping → Terminated。
	// 停止逻辑失败时状态进入 Failed 并返回 *StopError；
	// 对 Idle 或已处于终态的服务调用返回 *InvalidStateError 且不改变状态。
	Stop(ctx context.Context) error

	// AwaitTermination 阻塞直到服务进入终态（Terminated 或 Failed），
	// 返回终态；已处于终态时立即返回。
	// ctx 取消时返回当前状态和 ctx.Err()。
	AwaitTermination(ctx context.Context) (Status, error)

	// Status 返回当前状态快照，不会阻塞
	Status() Status
}

// Base 服务基类，持有状态标志并提供受保护的状态迁移。
// 具体服务通过内嵌 Base 获得 Name/Status/AwaitTermination 的默认实现，
// 并在 Start/Stop 中使用 BeginStart 等方法推进状态机。
type Base struct {
	name string
	flag *StatusFlag
}

// NewBase 创建服务基类，初始状态为 Idle
func NewBase(name string) Base {
	return Base{
		name: name,
		flag: NewStatusFlag(),
	}
}

// Name 服务名称
func (b *Base) Name() string {
	return b.name
}

// Status 当前状态快照
func (b *Base) Status() Status {
	return b.flag.Get()
}

// Flag 返回底层状态标志（用于观测，如 select 监听 Done）
func (b *Base) Flag() *StatusFlag {
	return b.flag
}

// AwaitTermination 阻塞直到进入终态，已终态时立即返回
func (b *Base) AwaitTermination(ctx context.Context) (Status, error) {
	select {
	case <-b.flag.Done():
		return b.flag.Get(), nil
	default:
	}

	select {
	case <-b.flag.Done():
		return b.flag.Get(), nil
	case <-ctx.Done():
		return b.flag.Get(), ctx.Err()
	}
}

// BeginStart 尝试 Idle → Starting 迁移，
// 当前不是 Idle 时返回 *InvalidStateError
func (b *Base) BeginStart() error {
	if !b.flag.CompareAndSwap(StatusIdle, StatusStarting) {
		return &InvalidStateError{Service: b.name, Op: "start", State: b.flag.Get()}
	}
	return nil
}

// MarkRunning 尝试 Starting → Running 迁移
func (b *Base) MarkRunning() error {
	if !b.flag.CompareAndSwap(StatusStarting, StatusRunning) {
		return &InvalidStateError{Service: b.name, Op: "run", State: b.flag.Get()}
	}
	return nil
}

// BeginStop 尝试 Running|Starting → Stopping 迁移，
// 在其它状态下调用返回 *InvalidStateError
func (b *Base) BeginStop() error {
	if b.flag.CompareAndSwap(StatusRunning, StatusStopping) {
		return nil
	}
	if b.flag.CompareAndSwap(StatusStarting, StatusStopping) {
		return nil
	}
	return &InvalidStateError{Service: b.name, Op: "stop", State: b.flag.Get()}
}

// MarkTerminated 尝试 Stopping → Terminated 迁移
func (b *Base) MarkTerminated() error {
	if !b.flag.CompareAndSwap(StatusStopping, StatusTerminated) {
		return &InvalidStateError{Service: b.name, Op: "terminate", State: b.flag.Get()}
	}
	return nil
}

// MarkFailed 将任意非终态置为 Failed 并记录错误；已终态时不做任何事
func (b *Base) MarkFailed(err error) {
	if b.flag.Get().Terminal() {
		return
	}
	b.flag.Fail(err)
}

// FailStart 记录启动失败：状态置为 Failed，返回包装后的 *StartError
func (b *Base) FailStart(err error) error {
	e := &StartError{Service: b.name, Err: err}
	b.MarkFailed(e)
	return e
}

// FailStop 记录停止失败：状态置为 Failed，返回包装后的 *StopError
func (b *Base) FailStop(err error) error {
	e := &StopError{Service: b.name, Err: err}
	b.MarkFailed(e)
	return e
}
