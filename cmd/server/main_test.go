package main

import (
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNotifyStop_ReleaseUnregisters(t *testing.T) {
	// Keeps SIGTERM from terminating the test binary once stop is released.
	guard := make(chan os.Signal, 2)
	signal.Notify(guard, syscall.SIGTERM)
	defer signal.Stop(guard)

	stop, release := notifyStop()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))
	select {
	case sig := <-stop:
		require.Equal(t, syscall.SIGTERM, sig)
	case <-time.After(2 * time.Second):
		t.Fatal("stop channel did not receive SIGTERM")
	}
	<-guard

	release()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))
	select {
	case <-guard:
	case <-time.After(2 * time.Second):
		t.Fatal("guard channel did not receive SIGTERM")
	}
	select {
	case sig := <-stop:
		t.Fatalf("released channel received %v", sig)
	case <-time.After(100 * time.Millisecond):
	}
}
