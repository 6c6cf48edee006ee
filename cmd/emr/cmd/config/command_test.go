package config

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrhub/emr/cmd/application"
	appconfig "github.com/emrhub/emr/internal/config"
)

func run(t *testing.T, format string, cfg *appconfig.Config) string {
	t.Helper()
	app := &application.Mock{
		ConfigFunc:       func() *appconfig.Config { return cfg },
		OutputFormatFunc: func() string { return format },
	}
	cmd := NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestConfig_MasksAPIKey(t *testing.T) {
	cfg := appconfig.Default()
	cfg.APIKey = "super-secret-key"

	for _, format := range []string{"table", "json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			out := run(t, format, cfg)
			assert.NotContains(t, out, "super-secret-key")
			assert.Contains(t, out, "su************ey")
		})
	}
	assert.Equal(t, "super-secret-key", cfg.APIKey, "original config must not be modified")
}

func TestConfig_JSON(t *testing.T) {
	cfg := appconfig.Default()
	cfg.Port = 8081

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(run(t, "json", cfg)), &got))
	assert.EqualValues(t, 8081, got["port"])
	assert.Equal(t, "X-API-Key", got["auth_header"])
}

func TestConfig_Table(t *testing.T) {
	cfg := appconfig.Default()
	cfg.CORSOrigins = []string{"https://a.example", "https://b.example"}

	out := run(t, "table", cfg)

	upper := strings.ToUpper(out)
	for _, setting := range []string{"PROPERTY", "PORT", "API KEY", "READ TIMEOUT", "CORS ORIGINS"} {
		assert.Contains(t, upper, setting)
	}
	assert.Contains(t, out, "5000")
	assert.Contains(t, out, "10s")
	assert.Contains(t, out, "https://b.example")
}
