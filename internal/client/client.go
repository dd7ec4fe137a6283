package client

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/yabai-cli/internal/logging"
)

const (
	DefaultYabaiPath = "yabai"
	DefaultTimeout   = 5 * time.Second
)

// Client talks to yabai through its `-m` message interface.
type Client struct {
	path    string
	timeout time.Duration
	runner  Runner
}

// NewClient creates a new yabai client. Zero values fall back to defaults.
func NewClient(yabaiPath string, timeout time.Duration, runner Runner) *Client {
	if yabaiPath == "" {
		yabaiPath = DefaultYabaiPath
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if runner == nil {
		runner = ExecRunner{}
	}

	return &Client{
		path:    yabaiPath,
		timeout: timeout,
		runner:  runner,
	}
}

// Path returns the yabai binary the client invokes
func (c *Client) Path() string {
	return c.path
}

// Timeout returns the per-call timeout
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Message sends `yabai -m <args...>` and returns stdout.
func (c *Client) Message(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	requestID := uuid.New().String()
	start := time.Now()

	out, err := c.runner.Run(ctx, c.path, append([]string{"-m"}, args...)...)

	event := logging.Debug()
	if err != nil {
		event = logging.Warn().Err(err)
	}
	event.
		Str("request_id", requestID).
		Strs("args", args).
		Dur("elapsed", time.Since(start)).
		Int("bytes", len(out)).
		Msg("yabai message")

	return out, err
}

// Query sends `yabai -m query --<domain>`.
func (c *Client) Query(ctx context.Context, domain string) ([]byte, error) {
	return c.Message(ctx, "query", "--"+domain)
}
