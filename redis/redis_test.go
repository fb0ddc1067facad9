package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gocrud/lifecycle"
	"github.com/gocrud/lifecycle/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Validate(t *testing.T) {
	opts := redis.NewDefaultOptions("cache")
	require.NoError(t, opts.Validate())

	opts.Addr = ""
	require.Error(t, opts.Validate())

	opts = redis.NewDefaultOptions("")
	require.Error(t, opts.Validate())

	opts = redis.NewDefaultOptions("cache")
	opts.DB = -1
	require.Error(t, opts.Validate())
}

func TestNewService_RejectsInvalidOptions(t *testing.T) {
	_, err := redis.NewService(redis.Options{Name: "cache"})
	require.Error(t, err)
}

// 连接失败：Start 返回 *StartError，状态进入 Failed
func TestService_StartFailure(t *testing.T) {
	opts := redis.NewDefaultOptions("cache")
	opts.Addr = "127.0.0.1:1" // 无服务监听
	opts.DialTimeout = 200 * time.Millisecond
	opts.MaxRetries = 0

	svc, err := redis.NewService(*opts)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusIdle, svc.Status())

	err = svc.Start(context.Background())
	require.Error(t, err)

	var se *lifecycle.StartError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "cache", se.Service)
	assert.Equal(t, lifecycle.StatusFailed, svc.Status())

	// Failed 是终态：AwaitTermination 立即返回
	status, err := svc.AwaitTermination(context.Background())
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusFailed, status)
}

func TestService_StopBeforeStartRejected(t *testing.T) {
	svc, err := redis.NewService(*redis.NewDefaultOptions("cache"))
	require.NoError(t, err)

	err = svc.Stop(context.Background())
	assert.True(t, errors.Is(err, lifecycle.ErrInvalidState))
	assert.Equal(t, lifecycle.StatusIdle, svc.Status())
}
