package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMemoryBlacklist_AddContains(t *testing.T) {
	ctx := context.Background()
	bl := NewMemoryBlacklist()

	ok, err := bl.Contains(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, bl.Add(ctx, "token-a", time.Now().Add(time.Hour)))
	require.NoError(t, bl.Add(ctx, "token-a", time.Now().Add(time.Hour)))

	ok, err = bl.Contains(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := bl.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, bl.Clear(ctx))
	ok, _ = bl.Contains(ctx, "token-a")
	assert.False(t, ok)
}

func TestMemoryBlacklist_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	bl := NewMemoryBlacklist()
	bl.now = func() time.Time { return now }

	require.NoError(t, bl.Add(ctx, "expired", now.Add(-time.Minute)))
	require.NoError(t, bl.Add(ctx, "live", now.Add(time.Minute)))
	require.NoError(t, bl.Add(ctx, "no-expiry", time.Time{}))

	assert.Equal(t, 1, bl.Sweep())

	for token, want := range map[string]bool{"expired": false, "live": true, "no-expiry": true} {
		ok, err := bl.Contains(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, want, ok, token)
	}
}

func TestMemoryBlacklist_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	bl := NewMemoryBlacklist()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = bl.Add(ctx, fmt.Sprintf("token-%d", i%10), time.Time{})
		}(i)
	}
	wg.Wait()

	n, err := bl.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestMemoryBlacklist_RunStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	bl := NewMemoryBlacklist()
	require.NoError(t, bl.Add(context.Background(), "expired", time.Now().Add(-time.Second)))

	ctx, cancel := context.WithCancel(context.Background())
	swept := make(chan int, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		bl.Run(ctx, 10*time.Millisecond, func(removed int) {
			if removed > 0 {
				select {
				case swept <- removed:
				default:
				}
			}
		})
	}()

	select {
	case removed := <-swept:
		assert.Equal(t, 1, removed)
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not sweep")
	}

	cancel()
	<-done
}
