package web

import (
	"context"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/lifecycle"
	"github.com/gocrud/lifecycle/logging"
)

// Host Web 主机，实现 lifecycle.Service
type Host struct {
	lifecycle.Base

	addr   string
	engine *gin.Engine
	server *http.Server
	logger logging.Logger

	// mu 串行化 Start/Stop：Stop 必须等启动完成（listener 已赋值或已失败）
	mu       sync.Mutex
	listener net.Listener
}

// Addr 返回实际监听地址（启动后有效，支持随机端口）
func (h *Host) Addr() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listener != nil {
		return h.listener.Addr().String()
	}
	return h.addr
}

// Start 启动 Web 主机。
// 先同步绑定端口确认可用，再在 goroutine 中继续服务；
// 服务期间的意外错误会把状态置为 Failed。
func (h *Host) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.BeginStart(); err != nil {
		return err
	}

	h.logger.Info("Starting web host", logging.Field{Key: "addr", Value: h.addr})

	listener, err := net.Listen("tcp", h.addr)
	if err != nil {
		return h.FailStart(err)
	}
	h.listener = listener

	go func() {
		if err := h.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			h.logger.Error("Web host error",
				logging.Field{Key: "error", Value: err.Error()})
			h.MarkFailed(err)
		}
	}()

	h.MarkRunning()
	h.logger.Info("Web host started",
		logging.Field{Key: "address", Value: listener.Addr().String()})
	return nil
}

// Stop 停止 Web 主机，等待在途请求处理完成，时长受 ctx 限制
func (h *Host) Stop(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.BeginStop(); err != nil {
		return err
	}

	h.logger.Info("Stopping web host")

	if err := h.server.Shutdown(ctx); err != nil {
		h.logger.Error("Failed to shutdown web host gracefully",
			logging.Field{Key: "error", Value: err.Error()})
		return h.FailStop(err)
	}

	if err := h.MarkTerminated(); err != nil {
		return err
	}
	h.logger.Info("Web host stopped")
	return nil
}
