package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-irc/internal/config"
)

func TestAppRunsAndStops(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.ShutdownTimeout = 2 * time.Second
	cfg.AuditPath = filepath.Join(t.TempDir(), "audit.db")

	logger := zerolog.Nop()
	a, err := New(&cfg, &logger)
	require.NoError(t, err)
	require.NotNil(t, a.server)
	require.NotNil(t, a.store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool { return a.irc.Addr() != nil }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestAppFailsOnBusyAddress(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.HTTPAddr = ""
	cfg.ShutdownTimeout = time.Second

	logger := zerolog.Nop()
	first, err := New(&cfg, &logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	firstDone := make(chan error, 1)
	go func() { firstDone <- first.Run(ctx) }()
	require.Eventually(t, func() bool { return first.irc.Addr() != nil }, 2*time.Second, 10*time.Millisecond)

	cfg.Addr = first.irc.Addr().String()
	second, err := New(&cfg, &logger)
	require.NoError(t, err)
	assert.Error(t, second.Run(context.Background()))

	cancel()
	assert.NoError(t, <-firstDone)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Channels = nil

	logger := zerolog.Nop()
	_, err := New(&cfg, &logger)
	require.Error(t, err)
}
