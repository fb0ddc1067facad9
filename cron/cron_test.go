package cron_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gocrud/lifecycle"
	"github.com/gocrud/lifecycle/cron"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_StartStop(t *testing.T) {
	svc := cron.NewService()
	ctx := context.Background()

	assert.Equal(t, lifecycle.StatusIdle, svc.Status())

	require.NoError(t, svc.Start(ctx))
	assert.Equal(t, lifecycle.StatusRunning, svc.Status())

	require.NoError(t, svc.Stop(ctx))
	assert.Equal(t, lifecycle.StatusTerminated, svc.Status())
}

func TestService_JobExecutes(t *testing.T) {
	svc := cron.NewService(cron.WithSeconds())

	var count atomic.Int64
	require.NoError(t, svc.AddJob("* * * * * *", "tick", func() {
		count.Add(1)
	}))

	ctx := context.Background()
	require.NoError(t, svc.Start(ctx))
	defer svc.Stop(ctx)

	assert.Eventually(t, func() bool {
		return count.Load() >= 1
	}, 3*time.Second, 50*time.Millisecond)
}

func TestService_AddJobValidation(t *testing.T) {
	svc := cron.NewService()

	// 非法表达式
	err := svc.AddJob("not a cron expression", "bad", func() {})
	require.Error(t, err)

	// 重复名称
	require.NoError(t, svc.AddJob("* * * * *", "dup", func() {}))
	err = svc.AddJob("* * * * *", "dup", func() {})
	require.Error(t, err)
}

func TestService_RemoveJob(t *testing.T) {
	svc := cron.NewService()
	require.NoError(t, svc.AddJob("* * * * *", "tick", func() {}))
	svc.RemoveJob("tick")

	// 移除后同名任务可以重新注册
	require.NoError(t, svc.AddJob("* * * * *", "tick", func() {}))
}

func TestService_DoubleStartRejected(t *testing.T) {
	svc := cron.NewService()
	ctx := context.Background()

	require.NoError(t, svc.Start(ctx))
	defer svc.Stop(ctx)

	err := svc.Start(ctx)
	assert.True(t, errors.Is(err, lifecycle.ErrInvalidState))
}

func TestService_StopBeforeStartRejected(t *testing.T) {
	svc := cron.NewService()

	err := svc.Stop(context.Background())
	assert.True(t, errors.Is(err, lifecycle.ErrInvalidState))
	assert.Equal(t, lifecycle.StatusIdle, svc.Status())
}
