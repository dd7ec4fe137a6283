package profile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/yabai-cli/internal/client"
	"github.com/yourusername/yabai-cli/internal/config"
	"github.com/yourusername/yabai-cli/internal/wmerr"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls []call
	out   []byte
	err   error
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	return f.out, f.err
}

func newTestRegistry(t *testing.T, runner client.Runner) (*Registry, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Profiles.Dir = dir
	return NewRegistry(cfg, runner), dir
}

func TestResolve(t *testing.T) {
	reg, dir := newTestRegistry(t, &fakeRunner{})

	path, err := reg.Resolve("work")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "work_profile.sh"), path)

	path, err = reg.Resolve("ai_research")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ai_research_profile.sh"), path)
}

func TestResolve_Rejects(t *testing.T) {
	reg, _ := newTestRegistry(t, &fakeRunner{})

	for _, id := range []string{
		"unknown",
		"",
		"work; rm -rf ~",
		"work && say hi",
		"$(whoami)",
		"`id`",
		"../work",
		"work/../../etc/passwd",
		"WORK",
		"gaming",
	} {
		t.Run(id, func(t *testing.T) {
			_, err := reg.Resolve(id)
			var ve *wmerr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "profile", ve.Field)
		})
	}
}

func TestRun_UsesArgvNotShellString(t *testing.T) {
	runner := &fakeRunner{out: []byte("ok\n")}
	reg, dir := newTestRegistry(t, runner)

	out, err := reg.Run(context.Background(), "personal")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", string(out))

	require.Len(t, runner.calls, 1)
	assert.Equal(t, Shell, runner.calls[0].name)
	assert.Equal(t, []string{filepath.Join(dir, "personal_profile.sh")}, runner.calls[0].args)
}

func TestRun_UnknownNeverExecutes(t *testing.T) {
	runner := &fakeRunner{}
	reg, _ := newTestRegistry(t, runner)

	_, err := reg.Run(context.Background(), "unknown")
	assert.Equal(t, wmerr.KindValidation, wmerr.KindOf(err))
	assert.Empty(t, runner.calls)
}

func TestRun_PropagatesFailure(t *testing.T) {
	runErr := &wmerr.TransportError{Args: []string{Shell}, ExitCode: 1, Stderr: "boom"}
	reg, _ := newTestRegistry(t, &fakeRunner{err: runErr})

	_, err := reg.Run(context.Background(), "work")
	assert.True(t, errors.Is(err, runErr))
}

func TestRun_ExecutesScriptInProfilesDir(t *testing.T) {
	dir := t.TempDir()
	script := "#!/bin/sh\n# Work profile: editor left, browser right\npwd\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "work_profile.sh"), []byte(script), 0644))

	cfg := config.Default()
	cfg.Profiles.Dir = dir
	reg := NewRegistry(cfg, nil)

	out, err := reg.Run(context.Background(), "work")
	require.NoError(t, err)

	got, err := filepath.EvalSymlinks(string(out[:len(out)-1]))
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestInfoAndList(t *testing.T) {
	reg, dir := newTestRegistry(t, &fakeRunner{})
	script := "#!/bin/bash\n# setup\n# AI research profile - three column layout\nyabai -m space --layout bsp\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ai_research_profile.sh"), []byte(script), 0644))

	info, err := reg.Info("ai_research")
	require.NoError(t, err)
	assert.True(t, info.Exists)
	assert.Equal(t, "AI Research", info.Name)
	// config description wins over the script header
	assert.Equal(t, "AI & ML Development", info.Description)

	list := reg.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"work", "personal", "ai_research"}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.False(t, list[0].Exists)
	assert.True(t, list[2].Exists)
}

func TestScriptDescription(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "focus_profile.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh profile\n# misc\n## Focus Profile ##\necho\n"), 0644))
	assert.Equal(t, "Focus Profile", ScriptDescription(path))

	none := filepath.Join(dir, "none.sh")
	require.NoError(t, os.WriteFile(none, []byte("echo hi\n"), 0644))
	assert.Equal(t, "", ScriptDescription(none))
	assert.Equal(t, "", ScriptDescription(filepath.Join(dir, "missing.sh")))
}

func TestIDsFollowConfigOrder(t *testing.T) {
	cfg := config.Default()
	cfg.Profiles.Dir = t.TempDir()
	cfg.Profiles.Known = []config.ProfileConfig{{ID: "zeta"}, {ID: "alpha"}}
	reg := NewRegistry(cfg, &fakeRunner{})

	assert.Equal(t, cfg.GetProfileIDs(), reg.IDs())
	assert.Equal(t, []string{"zeta", "alpha"}, reg.IDs())

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, "zeta", list[0].ID)
}
