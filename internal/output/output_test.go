package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/yabai-cli/internal/models"
	"github.com/yourusername/yabai-cli/internal/notify"
	"github.com/yourusername/yabai-cli/internal/profile"
	"github.com/yourusername/yabai-cli/internal/state"
)

func init() {
	color.NoColor = true
}

func testSnapshot() *models.Snapshot {
	windows := []models.Window{
		{ID: 1, App: "Code", Title: "main.go", Display: 1, Space: 1, Focused: true, Frame: &models.Frame{X: 0, Y: 0, W: 1280, H: 1440}},
		{ID: 2, App: "Safari", Title: "Docs", Display: 2, Space: 3, Frame: &models.Frame{X: 2560, Y: 0, W: 1920, H: 1080}},
		{ID: 3, App: "Terminal", Title: "zsh", Display: 1, Space: 1, Frame: &models.Frame{X: 1280, Y: 0, W: 1280, H: 1440}},
		{ID: 4, App: "Mail", Title: "Inbox", Display: 1, Space: 2, Frame: &models.Frame{X: 0, Y: 0, W: 800, H: 600}},
	}
	displays := []models.Display{
		{ID: 10, Index: 1, Frame: models.Frame{W: 2560, H: 1440}, Spaces: []int{1, 2}},
		{ID: 11, Index: 2, Frame: models.Frame{X: 2560, W: 1920, H: 1080}, Spaces: []int{3}},
	}
	spaces := []models.Space{
		{ID: 100, Index: 1, Label: "code", Display: 1, Visible: true},
		{ID: 101, Index: 2, Display: 1},
		{ID: 102, Index: 3, Label: "web", Display: 2, Visible: true},
	}
	return models.NewSnapshot(windows, displays, spaces, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTable, "table": FormatTable, "json": FormatJSON, "yaml": FormatYAML, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	view := testSnapshot().View()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatJSON, view))
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded["windows"], 4)

	buf.Reset()
	require.NoError(t, Encode(&buf, FormatYAML, view))
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded["displays"], 2)

	assert.Error(t, Encode(&buf, FormatTable, view))
}

func TestWriteGroupedWindows(t *testing.T) {
	var buf bytes.Buffer
	WriteGroupedWindows(&buf, models.GroupByDisplay(testSnapshot()))
	out := buf.String()

	d1 := strings.Index(out, "Display 1 (3)")
	d2 := strings.Index(out, "Display 2 (1)")
	require.True(t, d1 >= 0 && d2 > d1, out)
	assert.Contains(t, out, "Terminal")
	assert.Contains(t, out, "focused")

	buf.Reset()
	WriteGroupedWindows(&buf, models.GroupByDisplay(nil))
	assert.Equal(t, "No windows\n", buf.String())
}

func TestWriteTables(t *testing.T) {
	snap := testSnapshot()
	var buf bytes.Buffer

	WriteDisplays(&buf, snap.Displays())
	assert.Contains(t, buf.String(), "2560x1440")
	assert.Contains(t, buf.String(), "1, 2")

	buf.Reset()
	WriteSpaces(&buf, snap.Spaces())
	assert.Contains(t, buf.String(), "web")

	buf.Reset()
	WriteProfiles(&buf, []profile.Profile{
		{ID: "work", Name: "Work", Exists: true},
		{ID: "personal", Name: "Personal"},
	}, "work")
	assert.Contains(t, buf.String(), "missing")
	assert.Contains(t, buf.String(), "*")
}

func TestWriteProfileHistory(t *testing.T) {
	var buf bytes.Buffer
	WriteProfileHistory(&buf, nil)
	assert.Contains(t, buf.String(), "No profiles applied yet")

	buf.Reset()
	WriteProfileHistory(&buf, []state.ProfileEntry{
		{ID: "personal", AppliedAt: time.Now(), Error: "exit status 1"},
		{ID: "work", AppliedAt: time.Now(), Success: true},
	})
	out := buf.String()
	assert.Contains(t, out, "failed: exit status 1")
	assert.Contains(t, out, "work")
	assert.Less(t, strings.Index(out, "personal"), strings.Index(out, "work"))
}

func TestWriteStatus(t *testing.T) {
	var buf bytes.Buffer
	WriteStatus(&buf, StatusView{Status: "failed", Generation: 3, Error: "window manager unreachable", ErrorKind: "unavailable"})
	out := buf.String()
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "(unavailable)")
	assert.NotContains(t, out, "Windows:")
}

func TestWriteEvent(t *testing.T) {
	var buf bytes.Buffer
	WriteEvent(&buf, notify.Event{
		Kind:    notify.Failure,
		Source:  notify.SourceCommand,
		Title:   "Could not move window",
		Message: "exit 1",
		Time:    time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC),
	})
	assert.Equal(t, "✗ Could not move window: exit 1 [command 09:30:00]\n", buf.String())
}

func TestRenderLayout(t *testing.T) {
	opts := LayoutOptions{Width: 64, Height: 16, ShowIDs: true}
	out, err := RenderLayout(testSnapshot(), 1, opts)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, "Display 1 [2560x1440] 2 window(s)", lines[0])
	assert.Len(t, lines, 1+opts.Height)
	assert.Contains(t, out, "*[1] Code")
	assert.Contains(t, out, "[3] Terminal")
	// Mail is on a hidden space
	assert.NotContains(t, out, "Mail")

	_, err = RenderLayout(testSnapshot(), 9, opts)
	assert.Error(t, err)

	_, err = RenderLayout(testSnapshot(), 1, LayoutOptions{Width: 5, Height: 2})
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "héll...", truncate("héllo wörld", 7))
}
