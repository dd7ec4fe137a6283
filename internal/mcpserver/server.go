// Package mcpserver exposes the workspace service as MCP tools so agents
// can read the layout and issue commands.
package mcpserver

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/yabai-cli/internal/coordinator"
	"github.com/yourusername/yabai-cli/internal/logging"
	"github.com/yourusername/yabai-cli/internal/models"
	"github.com/yourusername/yabai-cli/internal/profile"
	"github.com/yourusername/yabai-cli/internal/wmerr"
)

// Workspace is the service surface the tools call. *workspace.Service
// satisfies it.
type Workspace interface {
	Snapshot() *models.Snapshot
	Status() coordinator.Status
	LastError() error
	Generation() uint64
	RefreshAndWait(ctx context.Context) error
	FocusWindow(ctx context.Context, id int) (<-chan struct{}, error)
	MoveWindowToDisplay(ctx context.Context, id, displayIndex int) (<-chan struct{}, error)
	RotateSpace(ctx context.Context, degrees int) (<-chan struct{}, error)
	ApplyProfile(ctx context.Context, name string) (<-chan struct{}, error)
	Profiles() []profile.Profile
}

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
}

// Server wraps the MCP server around a workspace
type Server struct {
	ws  Workspace
	mcp *mcpserver.MCPServer
}

// New creates a server with every tool registered
func New(ws Workspace, version string) *Server {
	s := &Server{
		ws:  ws,
		mcp: mcpserver.NewMCPServer("yabai-cli", version),
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve(cfg Config) error {
	logging.Info().Str("transport", cfg.Transport).Int("port", cfg.Port).Msg("mcp server starting")

	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("snapshot",
			mcp.WithDescription("Return the current windows, displays and spaces. Refreshes first unless refresh is false."),
			mcp.WithBoolean("refresh", mcp.Description("Fetch fresh state before answering (default true)")),
			mcp.WithBoolean("grouped", mcp.Description("Group windows by display")),
		),
		s.handleSnapshot,
	)

	s.mcp.AddTool(
		mcp.NewTool("status",
			mcp.WithDescription("Report the refresh state: idle, fetching, ready or failed, with the last error"),
		),
		s.handleStatus,
	)

	s.mcp.AddTool(
		mcp.NewTool("refresh",
			mcp.WithDescription("Re-read window manager state and wait for the result"),
		),
		s.handleRefresh,
	)

	s.mcp.AddTool(
		mcp.NewTool("focus_window",
			mcp.WithDescription("Focus a window by its yabai window id"),
			mcp.WithNumber("id", mcp.Description("Window id"), mcp.Required()),
		),
		s.handleFocusWindow,
	)

	s.mcp.AddTool(
		mcp.NewTool("move_window_to_display",
			mcp.WithDescription("Move a window to another display"),
			mcp.WithNumber("id", mcp.Description("Window id"), mcp.Required()),
			mcp.WithNumber("display", mcp.Description("1-based display index"), mcp.Required()),
		),
		s.handleMoveWindow,
	)

	s.mcp.AddTool(
		mcp.NewTool("rotate_space",
			mcp.WithDescription("Rotate the focused space's window tree"),
			mcp.WithNumber("degrees", mcp.Description("90, 180 or 270"), mcp.Required()),
		),
		s.handleRotateSpace,
	)

	s.mcp.AddTool(
		mcp.NewTool("apply_profile",
			mcp.WithDescription("Run a registered workspace profile script"),
			mcp.WithString("name", mcp.Description("Profile id, see list_profiles"), mcp.Required()),
		),
		s.handleApplyProfile,
	)

	s.mcp.AddTool(
		mcp.NewTool("list_profiles",
			mcp.WithDescription("List registered workspace profiles"),
		),
		s.handleListProfiles,
	)
}

func (s *Server) handleSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	if boolParam(params, "refresh", true) {
		if err := s.ws.RefreshAndWait(ctx); err != nil && s.ws.Snapshot() == nil {
			return errorResult(err), nil
		}
	}

	snap := s.ws.Snapshot()
	if snap == nil {
		return mcp.NewToolResultError("no snapshot yet, call refresh"), nil
	}

	if boolParam(params, "grouped", false) {
		return yamlResult(map[string]interface{}{
			"fetchedAt": snap.FetchedAt(),
			"groups":    models.GroupByDisplay(snap).Map(),
		})
	}
	return yamlResult(snap.View())
}

type statusResult struct {
	Status     string    `yaml:"status"`
	Generation uint64    `yaml:"generation"`
	Error      string    `yaml:"error,omitempty"`
	ErrorKind  string    `yaml:"errorKind,omitempty"`
	FetchedAt  time.Time `yaml:"fetchedAt,omitempty"`
}

func (s *Server) status() statusResult {
	res := statusResult{Status: string(s.ws.Status()), Generation: s.ws.Generation()}
	if err := s.ws.LastError(); err != nil {
		res.Error = err.Error()
		res.ErrorKind = string(wmerr.KindOf(err))
	}
	if snap := s.ws.Snapshot(); snap != nil {
		res.FetchedAt = snap.FetchedAt()
	}
	return res
}

func (s *Server) handleStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return yamlResult(s.status())
}

func (s *Server) handleRefresh(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.ws.RefreshAndWait(ctx); err != nil {
		return errorResult(err), nil
	}
	return yamlResult(s.status())
}

func (s *Server) handleFocusWindow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireInt(request.GetArguments(), "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return commandResult(ctx, fmt.Sprintf("focused window %d", id), func() (<-chan struct{}, error) {
		return s.ws.FocusWindow(ctx, id)
	}), nil
}

func (s *Server) handleMoveWindow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	id, err := requireInt(params, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	display, err := requireInt(params, "display")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return commandResult(ctx, fmt.Sprintf("moved window %d to display %d", id, display), func() (<-chan struct{}, error) {
		return s.ws.MoveWindowToDisplay(ctx, id, display)
	}), nil
}

func (s *Server) handleRotateSpace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	degrees, err := requireInt(request.GetArguments(), "degrees")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return commandResult(ctx, fmt.Sprintf("rotated space %d degrees", degrees), func() (<-chan struct{}, error) {
		return s.ws.RotateSpace(ctx, degrees)
	}), nil
}

func (s *Server) handleApplyProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := stringParam(request.GetArguments(), "name", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	return commandResult(ctx, "applied profile "+name, func() (<-chan struct{}, error) {
		return s.ws.ApplyProfile(ctx, name)
	}), nil
}

func (s *Server) handleListProfiles(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return yamlResult(s.ws.Profiles())
}

// commandResult runs a command and waits for its follow-up refresh so the
// agent's next snapshot call sees the effect.
func commandResult(ctx context.Context, okText string, run func() (<-chan struct{}, error)) *mcp.CallToolResult {
	refreshed, err := run()
	if refreshed != nil {
		select {
		case <-refreshed:
		case <-ctx.Done():
		}
	}
	if err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText("ok: " + okText)
}

func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", wmerr.KindOf(err), err))
}

func yamlResult(v interface{}) (*mcp.CallToolResult, error) {
	b, err := yaml.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func stringParam(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return defaultVal
}

func boolParam(params map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return defaultVal
}

// requireInt reads a whole number. JSON numbers arrive as float64.
func requireInt(params map[string]interface{}, key string) (int, error) {
	switch v := params[key].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be a whole number", key)
		}
		if math.Abs(v) > math.MaxInt32 {
			return 0, fmt.Errorf("%s is out of range", key)
		}
		return int(v), nil
	case int:
		return v, nil
	case nil:
		return 0, fmt.Errorf("%s is required", key)
	default:
		return 0, fmt.Errorf("%s must be a number", key)
	}
}
