package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/go-drift/loom/pkg/errors"
	"github.com/go-drift/loom/pkg/scheduler"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolve_Defaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "widgets")
	require.NoError(t, os.Mkdir(dir, 0o755))

	cfg, err := Resolve(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "widgets", cfg.AppName)
	assert.Empty(t, cfg.ModulePath)
	assert.Equal(t, scheduler.DefaultFrameBudget, cfg.FrameBudget)
	assert.Equal(t, zapcore.InfoLevel, cfg.LogLevel)
	assert.False(t, cfg.Metrics)
}

func TestResolve_ModulePathNamesApp(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "go.mod", "module example.com/acme/dashboard/v2\n\ngo 1.24\n")

	cfg, err := Resolve(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "example.com/acme/dashboard/v2", cfg.ModulePath)
	assert.Equal(t, "dashboard", cfg.AppName)
}

func TestResolve_File(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "go.mod", "module example.com/acme/dashboard\n")
	write(t, dir, FileName, `
app:
  name: console
scheduler:
  frame_budget: 4ms
log:
  level: debug
  development: true
metrics:
  enabled: true
`)

	cfg, err := Resolve(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.AppName)
	assert.Equal(t, 4*time.Millisecond, cfg.FrameBudget)
	assert.Equal(t, zapcore.DebugLevel, cfg.LogLevel)
	assert.True(t, cfg.Development)
	assert.True(t, cfg.Metrics)
}

func TestResolve_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "custom.yaml", "app: {name: other}\n")

	cfg, err := Resolve(dir, path)
	require.NoError(t, err)
	assert.Equal(t, "other", cfg.AppName)

	_, err = Resolve(dir, filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "app: [", "failed to parse"},
		{"bad budget", "scheduler: {frame_budget: soon}", "scheduler.frame_budget"},
		{"negative budget", "scheduler: {frame_budget: -1ms}", "must be positive"},
		{"bad level", "log: {level: loud}", "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			write(t, dir, FileName, tt.content)

			_, err := Resolve(dir, "")
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.want)
			var ee *errors.EngineError
			require.True(t, errors.As(err, &ee))
			assert.Equal(t, errors.KindConfig, ee.Kind)
		})
	}
}

func TestDefaultAppName(t *testing.T) {
	assert.Equal(t, "loom", defaultAppName("github.com/go-drift/loom", "/tmp/x"))
	assert.Equal(t, "x", defaultAppName("", "/tmp/x"))
	assert.Equal(t, "loom_app", defaultAppName("", "/"))
}
