package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"reminder-board/component"
	"reminder-board/reminder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Defaults(t *testing.T) {
	cmd := newRootCmd(strings.NewReader(""), &bytes.Buffer{})

	interval, err := cmd.Flags().GetDuration("interval")
	require.NoError(t, err)
	assert.Equal(t, component.ScanInterval, interval)

	delay, err := cmd.Flags().GetDuration("delete-delay")
	require.NoError(t, err)
	assert.Equal(t, component.DeleteDelay, delay)
}

func TestRootCmd_RejectsBadInterval(t *testing.T) {
	cmd := newRootCmd(strings.NewReader(""), &bytes.Buffer{})
	cmd.SetArgs([]string{"--interval", "0s"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, "--interval must be positive")
}

func TestNewFiredSet(t *testing.T) {
	ctx := context.Background()

	fired, closeFn, err := newFiredSet(ctx, options{})
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &reminder.MemoryFiredSet{}, fired)

	fired, closeFn, err = newFiredSet(ctx, options{stateFile: filepath.Join(t.TempDir(), "fired.json")})
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &reminder.FileFiredSet{}, fired)

	_, _, err = newFiredSet(ctx, options{redisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}
