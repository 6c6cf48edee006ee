// Package config builds the immutable runtime configuration for the emr
// server. Values are resolved once at startup, in order of precedence:
//  1. Command-line flags (applied by the serve command)
//  2. Environment variables
//  3. .env.local, then .env (never overriding the real environment)
//  4. Config file (--config, or .emr.yaml in the working or home directory)
//  5. Defaults
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/emrhub/emr/pkg/constants"
	pkgerrors "github.com/emrhub/emr/pkg/errors"
)

// Keys used in the config file. See EnvVar for the matching environment
// variables.
const (
	KeyPort            = "port"
	KeyAPIKey          = "api_key"
	KeyHost            = "host"
	KeyAuthEnabled     = "auth_enabled"
	KeyAuthHeader      = "auth_header"
	KeyCORSEnabled     = "cors_enabled"
	KeyCORSOrigins     = "cors_origins"
	KeyRateLimit       = "rate_limit"
	KeyReadTimeout     = "read_timeout"
	KeyWriteTimeout    = "write_timeout"
	KeyIdleTimeout     = "idle_timeout"
	KeyShutdownTimeout = "shutdown_timeout"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"
	KeyLogOutput       = "log_output"
	KeyNoColor         = "no_color"
	KeyVerbose         = "verbose"
	KeyQuiet           = "quiet"
	KeyFormat          = "format"
)

// EnvPrefix namespaces the environment variables of every key except
// port, api_key and no_color, which are read bare.
const EnvPrefix = "EMR_"

var bareEnvKeys = map[string]bool{
	KeyPort:    true,
	KeyAPIKey:  true,
	KeyNoColor: true,
}

// EnvVar returns the environment variable that sets key, e.g. PORT for
// port and EMR_LOG_LEVEL for log_level.
func EnvVar(key string) string {
	name := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
	if bareEnvKeys[key] {
		return name
	}
	return EnvPrefix + name
}

// DefaultEnvFiles are loaded in order; earlier files win because godotenv
// never overrides a variable that is already set.
var DefaultEnvFiles = []string{".env.local", ".env"}

// Config holds the application configuration loaded from config files,
// .env files and environment variables.
type Config struct {
	// Listener
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`

	// API key check (inactive unless AuthEnabled)
	APIKey      string `json:"api_key" yaml:"api_key"`
	AuthEnabled bool   `json:"auth_enabled" yaml:"auth_enabled"`
	AuthHeader  string `json:"auth_header" yaml:"auth_header"`

	// CORS
	CORSEnabled bool     `json:"cors_enabled" yaml:"cors_enabled"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`

	// Requests per minute per client, 0 disables
	RateLimit int `json:"rate_limit" yaml:"rate_limit"`

	// HTTP timeouts
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`

	// Logging
	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`
	LogOutput string `json:"log_output" yaml:"log_output"`

	// CLI
	Verbose bool   `json:"verbose" yaml:"verbose"`
	Quiet   bool   `json:"quiet" yaml:"quiet"`
	NoColor bool   `json:"no_color" yaml:"no_color"`
	Format  string `json:"format" yaml:"format"`

	// ConfigFile is the config file that was read, if any
	ConfigFile string `json:"config_file" yaml:"config_file"`
}

type options struct {
	configFile string
	envFiles   []string
	searchHome bool
}

// Option customizes Load.
type Option func(*options)

// WithConfigFile reads the given file instead of searching for .emr.yaml.
// A missing explicit file is an error.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configFile = path
	}
}

// WithEnvFiles replaces the .env files that are loaded before reading the
// environment. Pass no files to skip .env loading entirely.
func WithEnvFiles(files ...string) Option {
	return func(o *options) {
		o.envFiles = files
	}
}

// WithoutHomeSearch stops Load from looking for .emr.yaml in $HOME.
func WithoutHomeSearch() Option {
	return func(o *options) {
		o.searchHome = false
	}
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:            constants.DefaultPort,
		APIKey:          constants.DefaultAPIKey,
		AuthHeader:      constants.DefaultAuthHeader,
		CORSOrigins:     []string{},
		ReadTimeout:     constants.DefaultReadTimeout,
		WriteTimeout:    constants.DefaultWriteTimeout,
		IdleTimeout:     constants.DefaultIdleTimeout,
		ShutdownTimeout: constants.DefaultShutdownTimeout,
		LogFormat:       "auto",
		LogOutput:       "stderr",
	}
}

// Load resolves the configuration from all sources.
func Load(opts ...Option) (*Config, error) {
	o := &options{
		envFiles:   DefaultEnvFiles,
		searchHome: true,
	}
	for _, opt := range opts {
		opt(o)
	}

	if err := loadEnvFiles(o.envFiles); err != nil {
		return nil, err
	}

	v := newViper()

	if err := readConfigFile(v, o); err != nil {
		return nil, err
	}

	port, err := parsePort(v.GetString(KeyPort))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Host:            v.GetString(KeyHost),
		Port:            port,
		APIKey:          v.GetString(KeyAPIKey),
		AuthEnabled:     v.GetBool(KeyAuthEnabled),
		AuthHeader:      v.GetString(KeyAuthHeader),
		CORSEnabled:     v.GetBool(KeyCORSEnabled),
		CORSOrigins:     splitList(v.GetStringSlice(KeyCORSOrigins)),
		RateLimit:       v.GetInt(KeyRateLimit),
		ReadTimeout:     v.GetDuration(KeyReadTimeout),
		WriteTimeout:    v.GetDuration(KeyWriteTimeout),
		IdleTimeout:     v.GetDuration(KeyIdleTimeout),
		ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFormat:       v.GetString(KeyLogFormat),
		LogOutput:       v.GetString(KeyLogOutput),
		Verbose:         v.GetBool(KeyVerbose),
		Quiet:           v.GetBool(KeyQuiet),
		NoColor:         v.GetBool(KeyNoColor),
		Format:          v.GetString(KeyFormat),
		ConfigFile:      v.ConfigFileUsed(),
	}

	if cfg.RateLimit < 0 {
		return nil, pkgerrors.NewConfigError(KeyRateLimit, "RATE_LIMIT must not be negative", nil)
	}

	return cfg, nil
}

// UpdateFromFlags updates config values from parsed global flags so flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose || c.Verbose
	c.Quiet = quiet || c.Quiet
	c.NoColor = noColor || c.NoColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// Redacted returns a copy safe to print, with the API key masked.
func (c *Config) Redacted() Config {
	out := *c
	out.APIKey = MaskSecret(c.APIKey)
	out.CORSOrigins = append([]string{}, c.CORSOrigins...)
	return out
}

// MaskSecret keeps the first and last two characters of longer secrets.
func MaskSecret(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 6:
		return strings.Repeat("*", len(secret))
	default:
		return secret[:2] + strings.Repeat("*", len(secret)-4) + secret[len(secret)-2:]
	}
}

// newViper returns a private viper instance with defaults and env binding.
func newViper() *viper.Viper {
	v := viper.New()

	d := Default()
	defaults := map[string]any{
		KeyPort:            d.Port,
		KeyAPIKey:          d.APIKey,
		KeyHost:            d.Host,
		KeyAuthEnabled:     d.AuthEnabled,
		KeyAuthHeader:      d.AuthHeader,
		KeyCORSEnabled:     d.CORSEnabled,
		KeyCORSOrigins:     d.CORSOrigins,
		KeyRateLimit:       d.RateLimit,
		KeyReadTimeout:     d.ReadTimeout,
		KeyWriteTimeout:    d.WriteTimeout,
		KeyIdleTimeout:     d.IdleTimeout,
		KeyShutdownTimeout: d.ShutdownTimeout,
		KeyLogLevel:        d.LogLevel,
		KeyLogFormat:       d.LogFormat,
		KeyLogOutput:       d.LogOutput,
		KeyVerbose:         false,
		KeyQuiet:           false,
		KeyNoColor:         false,
		KeyFormat:          "",
	}

	// Empty variables count as unset, so PORT="" still means 5000.
	v.AllowEmptyEnv(false)
	for key, value := range defaults {
		v.SetDefault(key, value)
		// Explicit bindings only: ambient variables such as HOST must not leak in.
		_ = v.BindEnv(key, EnvVar(key))
	}

	return v
}

// readConfigFile reads an explicit config file, or searches for .emr.yaml.
func readConfigFile(v *viper.Viper, o *options) error {
	if o.configFile != "" {
		v.SetConfigFile(o.configFile)
		if err := v.ReadInConfig(); err != nil {
			return pkgerrors.NewConfigError("file", "cannot read config file "+o.configFile, err)
		}
		return nil
	}

	v.SetConfigName(constants.ConfigFileName)
	v.SetConfigType(constants.ConfigFileType)
	v.AddConfigPath(".")
	if o.searchHome {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return pkgerrors.NewConfigError("file", "cannot parse config file", err)
	}
	return nil
}

// loadEnvFiles loads .env style files, skipping ones that do not exist.
func loadEnvFiles(files []string) error {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return pkgerrors.NewConfigError("env", "cannot load "+file, err)
		}
	}
	return nil
}

// parsePort validates PORT, accepting 0 for an OS-assigned port.
func parsePort(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.NewConfigError(KeyPort, "PORT must be an integer, got "+strconv.Quote(raw), err)
	}
	if port < 0 || port > constants.MaxPort {
		return 0, pkgerrors.NewConfigError(KeyPort, "PORT out of range: "+raw, nil)
	}
	return port, nil
}

// splitList flattens comma-separated entries, as CORS_ORIGINS arrives from
// the environment as a single string.
func splitList(values []string) []string {
	out := []string{}
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
