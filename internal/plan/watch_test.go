package plan

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestWatcher_CallsBackOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("targets: []\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	changed := make(chan struct{}, 4)
	w := NewWatcher(path, 20*time.Millisecond, zaptest.NewLogger(t))

	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func() {
			calls.Add(1)
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Writes to other files in the directory are ignored.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644)
		_ = os.WriteFile(path, []byte("targets: [{}]\n"), 0o644)
		select {
		case <-changed:
			return true
		default:
			return false
		}
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "nope", "plan.yaml"), 0, nil)
	err := w.Watch(context.Background(), func() {})
	require.Error(t, err)
}

func TestWatcher_CallbacksDoNotOverlap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("targets: []\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var inFlight, maxInFlight, calls atomic.Int32
	w := NewWatcher(path, 20*time.Millisecond, zaptest.NewLogger(t))

	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func() {
			n := inFlight.Add(1)
			for {
				m := maxInFlight.Load()
				if n <= m || maxInFlight.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(150 * time.Millisecond)
			calls.Add(1)
			inFlight.Add(-1)
		})
	}()

	// Keep writing faster than a regeneration takes.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("targets: [{}]\n"), 0o644)
		return calls.Load() >= 2
	}, 10*time.Second, 40*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}

	assert.Equal(t, int32(0), inFlight.Load(), "callback still running after Watch returned")
	assert.Equal(t, int32(1), maxInFlight.Load())
}
