package etcd_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gocrud/lifecycle"
	"github.com/gocrud/lifecycle/etcd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Validate(t *testing.T) {
	opts := etcd.NewDefaultOptions("registry")
	require.NoError(t, opts.Validate())

	opts.Endpoints = nil
	require.Error(t, opts.Validate())

	opts = etcd.NewDefaultOptions("")
	require.Error(t, opts.Validate())

	opts = etcd.NewDefaultOptions("registry")
	opts.DialTimeout = 0
	require.Error(t, opts.Validate())
}

func TestNewService_RejectsInvalidOptions(t *testing.T) {
	_, err := etcd.NewService(etcd.Options{Name: "registry", DialTimeout: time.Second})
	require.Error(t, err)
}

// 集群不可达：Start 返回 *StartError，状态进入 Failed
func TestService_StartFailure(t *testing.T) {
	opts := etcd.NewDefaultOptions("registry")
	opts.Endpoints = []string{"127.0.0.1:1"} // 无服务监听
	opts.DialTimeout = 300 * time.Millisecond

	svc, err := etcd.NewService(*opts)
	require.NoError(t, err)

	err = svc.Start(context.Background())
	require.Error(t, err)

	var se *lifecycle.StartError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, lifecycle.StatusFailed, svc.Status())
	assert.NotNil(t, svc.Flag().Err())
}

func TestService_StopBeforeStartRejected(t *testing.T) {
	svc, err := etcd.NewService(*etcd.NewDefaultOptions("registry"))
	require.NoError(t, err)

	err = svc.Stop(context.Background())
	assert.True(t, errors.Is(err, lifecycle.ErrInvalidState))
}
