package graceful

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/georgemunganga/promoled-directory/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextCanceledOnSignal(t *testing.T) {
	ctx, cancel := Context(context.Background(), logger.Nop())
	defer cancel()

	go func() {
		time.Sleep(100 * time.Millisecond)
		if err := syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
			t.Errorf("failed to send SIGINT: %v", err)
		}
	}()

	select {
	case <-ctx.Done():
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for the context to be canceled")
	}
}

func TestContextCancelStopsWatcher(t *testing.T) {
	ctx, cancel := Context(context.Background(), logger.Nop())
	cancel()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
