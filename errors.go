package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidState 非法状态迁移的哨兵错误，
// 用于 errors.Is 匹配 InvalidStateError
var ErrInvalidState = errors.New("invalid service state")

// InvalidStateError 表示调用方在当前状态下请求了不允许的操作，
// 例如对已经 Running 的服务再次调用 Start。
// 该错误返回时服务的状态标志保持不变。
type InvalidStateError struct {
	Service string // 服务名称
	Op      string // 被拒绝的操作（"start" / "stop" / "register"）
	State   Status // 拒绝时的状态
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("service '%s': cannot %s while %s", e.Service, e.Op, e.State)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// StartError 表示具体实现的启动逻辑失败。
// 服务的状态标志同时被置为 Failed 并记录同一错误。
type StartError struct {
	Service string
	Err     error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("service '%s' failed to start: %v", e.Service, e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// StopError 表示具体实现的停止逻辑失败
type StopError struct {
	Service string
	Err     error
}

func (e *StopError) Error() string {
	return fmt.Sprintf("service '%s' failed to stop: %v", e.Service, e.Err)
}

func (e *StopError) Unwrap() error {
	return e.Err
}

// AggregateError 汇总 ServiceManager 批量操作中各成员的失败，
// 不吞掉任何单个成员的原因
type AggregateError struct {
	Op     string  // 聚合操作名称（"start" / "stop"）
	Errors []error // 各成员的失败原因
}

func (e *AggregateError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%s failed for %d service(s): %s", e.Op, len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap 暴露每个成员的原因，支持 errors.Is/As 逐个匹配
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}
