package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowStopTask keeps working for a while after cancellation, like a rollup
// run that is still committing when shutdown starts.
type slowStopTask struct {
	finished atomic.Bool
}

func (s *slowStopTask) Start(ctx context.Context) error {
	<-ctx.Done()
	time.Sleep(50 * time.Millisecond)
	s.finished.Store(true)
	return nil
}

func TestStartScheduler_DoneOnlyAfterTaskReturns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	task := &slowStopTask{}

	done := startScheduler(ctx, task, true)
	select {
	case <-done:
		t.Fatal("done closed before cancellation")
	case <-time.After(20 * time.Millisecond):
	}

	cancel()
	<-done
	assert.True(t, task.finished.Load())
}

func TestStartScheduler_DisabledIsDoneImmediately(t *testing.T) {
	task := &slowStopTask{}
	done := startScheduler(context.Background(), task, false)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled scheduler should not block shutdown")
	}
	assert.False(t, task.finished.Load())
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestServe_StartsAndShutsDownCleanly(t *testing.T) {
	useSQLite(t)
	port := freePort(t)
	t.Setenv("HEADCOUNT_SERVER__HOST", "127.0.0.1")
	t.Setenv("HEADCOUNT_SERVER__PORT", fmt.Sprint(port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	served := make(chan error, 1)
	go func() { served <- serve(ctx, &rootFlags{configPath: defaultConfigPath}) }()

	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(healthURL)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}
