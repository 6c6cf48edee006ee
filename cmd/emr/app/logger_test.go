package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emrhub/emr/internal/config"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		want     string
		wantWarn bool
	}{
		{name: "default", cfg: config.Config{}, want: "info"},
		{name: "explicit", cfg: config.Config{LogLevel: "debug", Quiet: true}, want: "debug"},
		{name: "invalid explicit", cfg: config.Config{LogLevel: "loud"}, want: "info", wantWarn: true},
		{name: "verbose", cfg: config.Config{Verbose: true}, want: "debug"},
		{name: "quiet", cfg: config.Config{Quiet: true}, want: "warn"},
		{name: "verbose and quiet", cfg: config.Config{Verbose: true, Quiet: true}, want: "warn", wantWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var warn bytes.Buffer
			assert.Equal(t, tt.want, determineLogLevel(&tt.cfg, &warn))
			assert.Equal(t, tt.wantWarn, warn.Len() > 0)
		})
	}
}

func TestValidateLogLevel(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error"} {
		assert.Equal(t, level, validateLogLevel(level))
	}
	assert.Equal(t, "info", validateLogLevel("fatal"))
	assert.Equal(t, "info", validateLogLevel(""))
}

func TestNewLogger(t *testing.T) {
	cfg := config.Default()
	cfg.LogOutput = "discard"
	cfg.Verbose = true

	logger := NewLogger(cfg)
	assert.Equal(t, "debug", logger.GetLevel().String())
}
