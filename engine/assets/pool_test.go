package assets

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/aero-boar/engine/resources"
)

func TestPoolRunsTasks(t *testing.T) {
	p := NewPool(2)
	defer p.Shutdown()

	f, err := p.Submit(func() resources.AssetLoadResult {
		return resources.AssetLoadResult{Success: true}
	})
	require.NoError(t, err)

	result := f.Wait()
	assert.True(t, result.Success)
}

func TestPoolPoll(t *testing.T) {
	p := NewPool(1)
	defer p.Shutdown()

	release := make(chan struct{})
	f, err := p.Submit(func() resources.AssetLoadResult {
		<-release
		return resources.AssetLoadResult{Success: true}
	})
	require.NoError(t, err)

	_, ok := f.Poll()
	assert.False(t, ok, "task should still be running")

	close(release)
	result := f.Wait()
	assert.True(t, result.Success)
}

func TestPoolBoundedWorkers(t *testing.T) {
	const workers = 3
	p := NewPool(workers)
	defer p.Shutdown()

	var running atomic.Int32
	var peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers*4; i++ {
		f, err := p.Submit(func() resources.AssetLoadResult {
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return resources.AssetLoadResult{Success: true}
		})
		require.NoError(t, err)
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Wait()
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, peak.Load(), int32(workers))
}

func TestPoolShutdownDrainsQueue(t *testing.T) {
	p := NewPool(1)

	var done atomic.Int32
	for i := 0; i < 8; i++ {
		_, err := p.Submit(func() resources.AssetLoadResult {
			time.Sleep(time.Millisecond)
			done.Add(1)
			return resources.AssetLoadResult{Success: true}
		})
		require.NoError(t, err)
	}

	p.Shutdown()
	assert.Equal(t, int32(8), done.Load(), "queued tasks run before shutdown returns")
}

func TestPoolSubmitAfterShutdown(t *testing.T) {
	p := NewPool(1)
	p.Shutdown()
	p.Shutdown() // idempotent

	_, err := p.Submit(func() resources.AssetLoadResult {
		return resources.AssetLoadResult{}
	})
	assert.ErrorIs(t, err, ErrPoolStopped)
}
