package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrhub/emr/internal/config"
	"github.com/emrhub/emr/pkg/errors"
	"github.com/emrhub/emr/pkg/logging"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// isolate runs the test in an empty directory without emr variables set.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		config.KeyPort, config.KeyAPIKey, config.KeyHost, config.KeyAuthEnabled,
		config.KeyRateLimit, config.KeyLogLevel, config.KeyFormat,
	} {
		t.Setenv(config.EnvVar(key), "")
	}
}

func newTestApp(t *testing.T, cfg *config.Config, out *lockedBuffer) *App {
	t.Helper()
	logger := zerolog.Nop()
	app, err := New("1.0.0", "abc123", "2024-01-01", "test",
		WithConfig(cfg),
		WithLogger(&logger),
		WithOutput(out, out),
	)
	require.NoError(t, err)
	return app
}

func TestApp_New(t *testing.T) {
	isolate(t)

	app, err := New("1.0.0", "abc123", "2024-01-01", "test")
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", app.Version())
	assert.Equal(t, "abc123", app.Commit())
	assert.Equal(t, "2024-01-01", app.Date())
	assert.Equal(t, "test", app.BuiltBy())
	assert.NotNil(t, app.Logger())
	require.NotNil(t, app.Config())
	assert.Equal(t, 5000, app.Config().Port)
	assert.Equal(t, "default_api_key", app.Config().APIKey)
}

func TestApp_New_InvalidPort(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "not-a-port")

	_, err := New("1.0.0", "abc123", "2024-01-01", "test")

	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestExecute_Version(t *testing.T) {
	out := &lockedBuffer{}
	app := newTestApp(t, config.Default(), out)

	require.NoError(t, app.Execute(context.Background(), []string{"version"}))
	assert.Equal(t, "emr 1.0.0\n", out.String())
}

func TestExecute_VersionVerbose(t *testing.T) {
	out := &lockedBuffer{}
	app := newTestApp(t, config.Default(), out)

	require.NoError(t, app.Execute(context.Background(), []string{"version", "-v"}))
	assert.Contains(t, out.String(), "commit:   abc123")
	assert.Contains(t, out.String(), "built by: test")
}

func TestExecute_Routes(t *testing.T) {
	out := &lockedBuffer{}
	app := newTestApp(t, config.Default(), out)

	require.NoError(t, app.Execute(context.Background(), []string{"routes", "-o", "json"}))
	assert.Contains(t, out.String(), `"path": "/patient"`)
	assert.Equal(t, "json", app.OutputFormat())
}

func TestExecute_SetsDefaultLogger(t *testing.T) {
	original := *logging.Default()
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		logging.SetDefault(original)
		zerolog.SetGlobalLevel(originalLevel)
	})

	cfg := config.Default()
	cfg.LogOutput = "discard"
	out := &lockedBuffer{}
	app, err := New("1.0.0", "abc123", "2024-01-01", "test",
		WithConfig(cfg),
		WithOutput(out, out),
	)
	require.NoError(t, err)

	require.NoError(t, app.Execute(context.Background(), []string{"version", "--log-level", "warn"}))
	assert.Equal(t, zerolog.WarnLevel, logging.Default().GetLevel())
	assert.Equal(t, zerolog.WarnLevel, app.Logger().GetLevel())
}

func TestExecute_UnknownCommand(t *testing.T) {
	out := &lockedBuffer{}
	app := newTestApp(t, config.Default(), out)

	err := app.Execute(context.Background(), []string{"frobnicate"})
	require.Error(t, err)
}

func TestExecute_ConfigFileFlag(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "emr.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 6001\napi_key: from-file\n"), 0o600))

	out := &lockedBuffer{}
	logger := zerolog.Nop()
	app, err := New("1.0.0", "abc123", "2024-01-01", "test",
		WithLoadOptions(config.WithEnvFiles(), config.WithoutHomeSearch()),
		WithLogger(&logger),
		WithOutput(out, out),
	)
	require.NoError(t, err)

	require.NoError(t, app.Execute(context.Background(), []string{"config", "--config", path, "-o", "json"}))
	assert.Contains(t, out.String(), `"port": 6001`)
	assert.NotContains(t, out.String(), "from-file")
	assert.Equal(t, 6001, app.Config().Port)
}

func TestExecute_DefaultServes(t *testing.T) {
	cfg := config.Default()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0

	out := &lockedBuffer{}
	app := newTestApp(t, cfg, out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.Execute(ctx, []string{})
	}()

	require.Eventually(t, func() bool {
		return strings.HasPrefix(out.String(), "Server is running on http://localhost:")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, 0, cfg.Port, "config passed with WithConfig must not change")
}

func TestExecute_InvalidServerConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Host = "127.0.0.1"
	cfg.Port = -1

	out := &lockedBuffer{}
	app := newTestApp(t, cfg, out)

	err := app.Execute(context.Background(), []string{"serve"})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}
