package routes

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrhub/emr/cmd/application"
	"github.com/emrhub/emr/internal/server"
)

func run(t *testing.T, format string) (string, error) {
	t.Helper()
	app := &application.Mock{OutputFormatFunc: func() string { return format }}
	cmd := NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	return out.String(), err
}

func TestRoutes_JSON(t *testing.T) {
	out, err := run(t, "json")
	require.NoError(t, err)

	var routes []server.Route
	require.NoError(t, json.Unmarshal([]byte(out), &routes))
	require.Len(t, routes, 2)
	assert.Equal(t, "/", routes[0].Path)
	assert.Equal(t, "Welcome to the Home Page of EMR", routes[0].Body)
	assert.Equal(t, "/patient", routes[1].Path)
	assert.Equal(t, "Welcome to the Patient Page", routes[1].Body)
}

func TestRoutes_YAML(t *testing.T) {
	out, err := run(t, "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "path: /patient")
}

func TestRoutes_Table(t *testing.T) {
	out, err := run(t, "table")
	require.NoError(t, err)

	upper := strings.ToUpper(out)
	for _, header := range []string{"METHOD", "PATH", "STATUS", "CONTENT TYPE", "BODY"} {
		assert.Contains(t, upper, header)
	}
	assert.Contains(t, out, "Welcome to the Patient Page")
	assert.Contains(t, out, "200")
}

func TestRoutes_InvalidFormat(t *testing.T) {
	_, err := run(t, "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
