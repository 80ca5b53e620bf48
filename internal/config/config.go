package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/silk/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "silk.json"

	// DefaultPort is the default port of silk serve.
	DefaultPort = 3000

	// DefaultHost is the default host of silk serve.
	DefaultHost = "localhost"

	// DefaultMetricsPath is where silk serve exposes Prometheus metrics.
	DefaultMetricsPath = "/metrics"
)

// Config represents the complete silk.json configuration.
type Config struct {
	// Log configures the CLI logger.
	Log LogConfig `json:"log"`

	// Serve configures the demo server and its sessions.
	Serve ServeConfig `json:"serve"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `json:"metrics"`

	// Replay configures randomized reconciliation replays.
	Replay ReplayConfig `json:"replay"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// ServeConfig contains settings for silk serve.
type ServeConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`

	// PaintInterval is how often a session paints.
	PaintInterval Duration `json:"paintInterval,omitempty"`

	// WriteTimeout bounds each websocket write.
	WriteTimeout Duration `json:"writeTimeout,omitempty"`

	// QueueSize is how many submitted tasks a session buffers.
	QueueSize int `json:"queueSize,omitempty"`

	// MaxSessions limits concurrent sessions. 0 means no limit.
	MaxSessions int `json:"maxSessions,omitempty"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout Duration `json:"shutdownTimeout,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled"`
	Path      string `json:"path,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

// ReplayConfig contains defaults for silk replay.
type ReplayConfig struct {
	// Seed seeds the generator. 0 picks a seed from the clock.
	Seed int64 `json:"seed,omitempty"`

	// Runs is the number of independent streams to replay.
	Runs int `json:"runs,omitempty"`

	// Ops is the number of deltas per stream.
	Ops int `json:"ops,omitempty"`

	// Groups is the number of child regions sharing one parent.
	Groups int `json:"groups,omitempty"`
}

// Duration is a time.Duration written as a string such as "16ms".
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{Metrics: MetricsConfig{Enabled: true}}
	c.applyDefaults()
	return c
}

// Load reads silk.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path. Fields missing
// from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").WithOp("no %s in %s", ConfigFileName, filepath.Dir(path))
		}
		return nil, errors.New("E140").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E140").WithOp("parse %s", path).Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("E142").WithOp("no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E140").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E140").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	// Log
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Serve
	if c.Serve.Host == "" {
		c.Serve.Host = DefaultHost
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = DefaultPort
	}
	if c.Serve.PaintInterval == 0 {
		c.Serve.PaintInterval = Duration(16 * time.Millisecond)
	}
	if c.Serve.WriteTimeout == 0 {
		c.Serve.WriteTimeout = Duration(10 * time.Second)
	}
	if c.Serve.QueueSize == 0 {
		c.Serve.QueueSize = 256
	}
	if c.Serve.ShutdownTimeout == 0 {
		c.Serve.ShutdownTimeout = Duration(5 * time.Second)
	}

	// Metrics
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "silk"
	}

	// Replay
	if c.Replay.Runs == 0 {
		c.Replay.Runs = 100
	}
	if c.Replay.Ops == 0 {
		c.Replay.Ops = 200
	}
	if c.Replay.Groups == 0 {
		c.Replay.Groups = 3
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.Log.SlogLevel(); err != nil {
		return errors.New("E142").WithOp("log.level %q", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("E142").WithOp("log.format %q", c.Log.Format).
			WithHint("Use \"text\" or \"json\"")
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return errors.New("E142").WithOp("serve.port %d", c.Serve.Port).
			WithHint("Port must be between 0 and 65535")
	}
	if c.Serve.PaintInterval <= 0 || c.Serve.WriteTimeout <= 0 || c.Serve.ShutdownTimeout <= 0 {
		return errors.New("E142").WithOp("serve durations must be positive")
	}
	if c.Serve.QueueSize < 1 || c.Serve.MaxSessions < 0 {
		return errors.New("E142").WithOp("serve.queueSize %d, serve.maxSessions %d", c.Serve.QueueSize, c.Serve.MaxSessions)
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("E142").WithOp("metrics.path %q", c.Metrics.Path).
			WithHint("The metrics path must start with /")
	}
	if c.Replay.Runs < 1 || c.Replay.Ops < 1 || c.Replay.Groups < 1 {
		return errors.New("E142").WithOp("replay runs, ops and groups must be at least 1")
	}
	return nil
}

// Addr returns the listen address of silk serve.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Serve.Host, strconv.Itoa(c.Serve.Port))
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(l.Level))
	return level, err
}

// NewLogger builds a logger writing to w in the configured format.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := l.SlogLevel()
	if err != nil {
		return nil, errors.New("E142").WithOp("log.level %q", l.Level).Wrap(err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the directory containing
// silk.json.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E141").WithOp("no %s in %s or any parent directory", ConfigFileName, startDir)
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads silk.json from the working directory or the
// nearest parent that has one. Without a file, the defaults are returned.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return New(), nil
	}

	return Load(root)
}
