package lifecycle_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/gocrud/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFlag_InitialStateIsIdle(t *testing.T) {
	flag := lifecycle.NewStatusFlag()
	assert.Equal(t, lifecycle.StatusIdle, flag.Get())
	assert.Nil(t, flag.Err())
}

func TestStatusFlag_SetAndGet(t *testing.T) {
	flag := lifecycle.NewStatusFlag()

	flag.Set(lifecycle.StatusStarting)
	assert.Equal(t, lifecycle.StatusStarting, flag.Get())

	flag.Set(lifecycle.StatusRunning)
	assert.Equal(t, lifecycle.StatusRunning, flag.Get())
}

func TestStatusFlag_CompareAndSwap(t *testing.T) {
	flag := lifecycle.NewStatusFlag()

	require.True(t, flag.CompareAndSwap(lifecycle.StatusIdle, lifecycle.StatusStarting))
	assert.Equal(t, lifecycle.StatusStarting, flag.Get())

	// 旧值不匹配时不改变状态
	require.False(t, flag.CompareAndSwap(lifecycle.StatusIdle, lifecycle.StatusRunning))
	assert.Equal(t, lifecycle.StatusStarting, flag.Get())
}

func TestStatusFlag_FailRecordsReason(t *testing.T) {
	flag := lifecycle.NewStatusFlag()
	cause := errors.New("boom")

	flag.Fail(cause)

	assert.Equal(t, lifecycle.StatusFailed, flag.Get())
	assert.Equal(t, cause, flag.Err())
}

func TestStatusFlag_DoneClosesOnTerminal(t *testing.T) {
	flag := lifecycle.NewStatusFlag()

	select {
	case <-flag.Done():
		t.Fatal("Done should not be closed before a terminal state")
	default:
	}

	flag.Set(lifecycle.StatusTerminated)

	select {
	case <-flag.Done():
	default:
		t.Fatal("Done should be closed after a terminal state")
	}

	// 再次写终态不应 panic（通道只关闭一次）
	flag.Set(lifecycle.StatusTerminated)
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, lifecycle.StatusIdle.Terminal())
	assert.False(t, lifecycle.StatusStarting.Terminal())
	assert.False(t, lifecycle.StatusRunning.Terminal())
	assert.False(t, lifecycle.StatusStopping.Terminal())
	assert.True(t, lifecycle.StatusTerminated.Terminal())
	assert.True(t, lifecycle.StatusFailed.Terminal())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "Idle", lifecycle.StatusIdle.String())
	assert.Equal(t, "Running", lifecycle.StatusRunning.String())
	assert.Equal(t, "Failed", lifecycle.StatusFailed.String())
	assert.Equal(t, "Unknown", lifecycle.Status(42).String())
}

// 并发读写下只能观察到合法的状态值
func TestStatusFlag_ConcurrentReaders(t *testing.T) {
	flag := lifecycle.NewStatusFlag()

	valid := map[lifecycle.Status]bool{
		lifecycle.StatusIdle:       true,
		lifecycle.StatusStarting:   true,
		lifecycle.StatusRunning:    true,
		lifecycle.StatusStopping:   true,
		lifecycle.StatusTerminated: true,
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	var mu sync.Mutex
	var invalid []lifecycle.Status

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if s := flag.Get(); !valid[s] {
					mu.Lock()
					invalid = append(invalid, s)
					mu.Unlock()
					return
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		flag.Set(lifecycle.StatusStarting)
		flag.Set(lifecycle.StatusRunning)
		flag.Set(lifecycle.StatusStopping)
	}
	flag.Set(lifecycle.StatusTerminated)
	close(stop)
	wg.Wait()

	assert.Empty(t, invalid, "readers must never observe a torn state")
}
