package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// consoleLogger 输出文本格式日志到指定 Writer
type consoleLogger struct {
	mu       *sync.Mutex
	out      io.Writer
	minimum  LogLevel
	category string
}

// ConsoleOption 用于配置控制台日志记录器
type ConsoleOption func(*consoleLogger)

// WithWriter 设置输出目标，默认 os.Stdout
func WithWriter(w io.Writer) ConsoleOption {
	return func(l *consoleLogger) {
		l.out = w
	}
}

// WithMinimumLevel 设置最低输出级别，默认 Info
func WithMinimumLevel(level LogLevel) ConsoleOption {
	return func(l *consoleLogger) {
		l.minimum = level
	}
}

// NewConsoleLogger 创建控制台日志记录器
func NewConsoleLogger(opts ...ConsoleOption) Logger {
	l := &consoleLogger{
		mu:      &sync.Mutex{},
		out:     os.Stdout,
		minimum: LogLevelInfo,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *consoleLogger) Debug(msg string, fields ...Field) { l.Log(LogLevelDebug, msg, fields...) }
func (l *consoleLogger) Info(msg string, fields ...Field)  { l.Log(LogLevelInfo, msg, fields...) }
func (l *consoleLogger) Warn(msg string, fields ...Field)  { l.Log(LogLevelWarn, msg, fields...) }
func (l *consoleLogger) Error(msg string, fields ...Field) { l.Log(LogLevelError, msg, fields...) }

func (l *consoleLogger) Log(level LogLevel, msg string, fields ...Field) {
	if level < l.minimum {
		return
	}

	var sb strings.Builder
	sb.WriteString(time.Now().Format("2006-01-02T15:04:05.000"))
	sb.WriteString(" [")
	sb.WriteString(level.String())
	sb.WriteString("]")
	if l.category != "" {
		sb.WriteString(" (")
		sb.WriteString(l.category)
		sb.WriteString(")")
	}
	sb.WriteString(" ")
	sb.WriteString(msg)
	for _, f := range fields {
		sb.WriteString(fmt.Sprintf(" %s=%v", f.Key, f.Value))
	}
	sb.WriteString("\n")

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.out, sb.String())
}

// WithCategory 返回带分类标签的日志记录器，与原实例共享输出
func (l *consoleLogger) WithCategory(category string) Logger {
	clone := *l
	clone.category = category
	return &clone
}
