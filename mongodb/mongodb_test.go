package mongodb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gocrud/lifecycle"
	"github.com/gocrud/lifecycle/mongodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Validate(t *testing.T) {
	opts := mongodb.NewDefaultOptions("store", "mongodb://localhost:27017")
	require.NoError(t, opts.Validate())

	opts.Uri = ""
	require.Error(t, opts.Validate())

	opts = mongodb.NewDefaultOptions("", "mongodb://localhost:27017")
	require.Error(t, opts.Validate())

	opts = mongodb.NewDefaultOptions("store", "mongodb://localhost:27017")
	opts.Timeout = 0
	require.Error(t, opts.Validate())
}

func TestNewService_RejectsInvalidOptions(t *testing.T) {
	_, err := mongodb.NewService(mongodb.Options{Name: "store", Timeout: time.Second})
	require.Error(t, err)
}

// 非法 URI：Start 返回 *StartError，状态进入 Failed
func TestService_StartFailureOnBadUri(t *testing.T) {
	opts := mongodb.NewDefaultOptions("store", "not a mongodb uri")
	opts.Timeout = 500 * time.Millisecond

	svc, err := mongodb.NewService(*opts)
	require.NoError(t, err)

	err = svc.Start(context.Background())
	require.Error(t, err)

	var se *lifecycle.StartError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, lifecycle.StatusFailed, svc.Status())
}

func TestService_StopBeforeStartRejected(t *testing.T) {
	svc, err := mongodb.NewService(*mongodb.NewDefaultOptions("store", "mongodb://localhost:27017"))
	require.NoError(t, err)

	err = svc.Stop(context.Background())
	assert.True(t, errors.Is(err, lifecycle.ErrInvalidState))
}
