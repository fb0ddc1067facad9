package lifecycle

import (
	"sync"
	"sync/atomic"
)

// Status 服务生命周期状态
type Status int32

const (
	// StatusIdle 初始状态，尚未启动
	StatusIdle Status = iota
	// StatusStarting 已请求启动，尚未确认运行
	StatusStarting
	// StatusRunning 正常运行中
	StatusRunning
	// StatusStopping 已请求停止，尚未确认停止
	StatusStopping
	// StatusTerminated 终态：已正常停止
	StatusTerminated
	// StatusFailed 终态：启动或停止过程中出错
	StatusFailed
)

// String 返回状态的字符串表示
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusStarting:
		return "Starting"
	case StatusRunning:
		return "Running"
	case StatusStopping:
		return "Stopping"
	case StatusTerminated:
		return "Terminated"
	case StatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal 判断是否为终态（Terminated 或 Failed）
func (s Status) Terminal() bool {
	return s == StatusTerminated || s == StatusFailed
}

// StatusFlag 以线程安全的方式包装服务的当前状态。
// 通常作为 Service 实现的一个字段持有（参见 Base）。
//
// Get/Set 本身不校验状态迁移是否合法，迁移图的约束由
// Service 实现负责（参见 Base 的受保护迁移方法）。
type StatusFlag struct {
	state   atomic.Int32
	failure atomic.Pointer[failedReason]

	// done 在首次进入终态时关闭，用于唤醒 AwaitTermination
	done     chan struct{}
	doneOnce sync.Once
}

// failedReason 保存 Failed 状态附带的错误详情。
// 错误详情仅供观测，不参与状态比较。
type failedReason struct {
	err error
}

// NewStatusFlag 创建状态标志，初始状态为 Idle
func NewStatusFlag() *StatusFlag {
	return &StatusFlag{
		done: make(chan struct{}),
	}
}

// Get 返回当前状态。不会阻塞，可与任意写入并发调用。
func (f *StatusFlag) Get() Status {
	return Status(f.state.Load())
}

// Set 原子地替换当前状态。
// 首次写入终态时会唤醒所有等待 Done 的调用方。
func (f *StatusFlag) Set(s Status) {
	f.state.Store(int32(s))
	if s.Terminal() {
		f.doneOnce.Do(func() { close(f.done) })
	}
}

// CompareAndSwap 仅当当前状态等于 old 时替换为 new，返回是否成功
func (f *StatusFlag) CompareAndSwap(old, new Status) bool {
	if !f.state.CompareAndSwap(int32(old), int32(new)) {
		return false
	}
	if new.Terminal() {
		f.doneOnce.Do(func() { close(f.done) })
	}
	return true
}

// Fail 将状态置为 Failed 并记录错误详情
func (f *StatusFlag) Fail(err error) {
	f.failure.Store(&failedReason{err: err})
	f.Set(StatusFailed)
}

// Err 返回 Failed 状态记录的错误详情；非 Failed 状态返回 nil
func (f *StatusFlag) Err() error {
	if f.Get() != StatusFailed {
		return nil
	}
	if r := f.failure.Load(); r != nil {
		return r.err
	}
	return nil
}

// Done 返回一个在进入终态时关闭的通道，供 select 监听
func (f *StatusFlag) Done() <-chan struct{} {
	return f.done
}
