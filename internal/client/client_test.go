package client

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/yabai-cli/internal/wmerr"
)

type recordingRunner struct {
	name     string
	args     []string
	deadline time.Time
	out      []byte
	err      error
}

func (r *recordingRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.name = name
	r.args = args
	r.deadline, _ = ctx.Deadline()
	return r.out, r.err
}

func TestClientQuery(t *testing.T) {
	runner := &recordingRunner{out: []byte("[]")}
	c := NewClient("/opt/homebrew/bin/yabai", 2*time.Second, runner)

	out, err := c.Query(context.Background(), "windows")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
	assert.Equal(t, "/opt/homebrew/bin/yabai", runner.name)
	assert.Equal(t, []string{"-m", "query", "--windows"}, runner.args)
	assert.WithinDuration(t, time.Now().Add(2*time.Second), runner.deadline, 500*time.Millisecond)
}

func TestClientDefaults(t *testing.T) {
	c := NewClient("", 0, nil)
	assert.Equal(t, DefaultYabaiPath, c.Path())
	assert.Equal(t, DefaultTimeout, c.Timeout())
}

func TestClientKeepsEarlierDeadline(t *testing.T) {
	runner := &recordingRunner{}
	c := NewClient("yabai", time.Minute, runner)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, _ = c.Message(ctx, "space", "--rotate", "90")

	want, _ := ctx.Deadline()
	assert.WithinDuration(t, want, runner.deadline, 10*time.Millisecond)
}

func TestClientPropagatesError(t *testing.T) {
	runner := &recordingRunner{err: &wmerr.TransportError{Args: []string{"yabai"}, ExitCode: 1}}
	c := NewClient("yabai", time.Second, runner)

	_, err := c.Message(context.Background(), "window", "--focus", "3")
	var te *wmerr.TransportError
	assert.True(t, errors.As(err, &te))
}

// writeScript creates an executable shell script standing in for yabai.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-yabai")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestExecRunnerSuccess(t *testing.T) {
	script := writeScript(t, `echo "$@"`)

	out, err := ExecRunner{}.Run(context.Background(), script, "-m", "query", "--spaces")
	require.NoError(t, err)
	assert.Equal(t, "-m query --spaces\n", string(out))
}

func TestExecRunnerNonZeroExit(t *testing.T) {
	script := writeScript(t, `echo "could not locate window" >&2; exit 1`)

	_, err := ExecRunner{}.Run(context.Background(), script, "-m", "window", "--focus", "7")
	var te *wmerr.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 1, te.ExitCode)
	assert.Equal(t, "could not locate window", te.Stderr)
	assert.False(t, te.Timeout)
}

func TestExecRunnerMissingBinary(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), filepath.Join(t.TempDir(), "nope"))
	var te *wmerr.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, -1, te.ExitCode)
}

func TestExecRunnerTimeout(t *testing.T) {
	script := writeScript(t, `sleep 5`)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := ExecRunner{}.Run(ctx, script)
	var te *wmerr.TransportError
	require.True(t, errors.As(err, &te))
	assert.True(t, te.Timeout)
	assert.Less(t, time.Since(start), 3*time.Second)
}
