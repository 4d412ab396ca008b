package cli

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalContextCapturesSignal(t *testing.T) {
	sc := NewSignalContext(context.Background())
	defer sc.Cancel()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGINT))

	select {
	case <-sc.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled after SIGINT")
	}
	assert.Equal(t, syscall.SIGINT, sc.Signal())
}

func TestSignalContextPlainCancel(t *testing.T) {
	sc := NewSignalContext(context.Background())
	sc.Cancel()

	<-sc.Done()
	assert.Nil(t, sc.Signal())
}
