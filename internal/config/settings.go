// Package config loads and validates application settings.
package config

import (
	"fmt"
	"time"

	"github.com/Veraticus/roundup/internal/common"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyLogLevel          = "logging.level"
	KeyLogFormat         = "logging.format"
	KeyTracingEnabled    = "tracing.enabled"
	KeyParallelism       = "engine.parallelism"
	KeyOutputFormat      = "output.format"
	KeyOutputPerformance = "output.performance"
	KeyServerAddr        = "server.addr"
	KeyReadTimeout       = "server.read_timeout"
	KeyWriteTimeout      = "server.write_timeout"
	KeyShutdownTimeout   = "server.shutdown_timeout"
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatTable = "table"
)

// Settings is the resolved configuration.
type Settings struct {
	Logging LoggingSettings
	Output  OutputSettings
	Server  ServerSettings
	Engine  EngineSettings
	Tracing bool
}

// LoggingSettings controls the slog handler.
type LoggingSettings struct {
	Level  string
	Format string
}

// EngineSettings tunes evaluation.
type EngineSettings struct {
	Parallelism int // query windows evaluated at once
}

// OutputSettings controls how results are written.
type OutputSettings struct {
	Format      string
	Performance bool // include the performance block
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyTracingEnabled, false)
	v.SetDefault(KeyParallelism, 4)
	v.SetDefault(KeyOutputFormat, FormatJSON)
	v.SetDefault(KeyOutputPerformance, true)
	v.SetDefault(KeyServerAddr, ":5477")
	v.SetDefault(KeyReadTimeout, 10*time.Second)
	v.SetDefault(KeyWriteTimeout, 30*time.Second)
	v.SetDefault(KeyShutdownTimeout, 5*time.Second)
}

// Load reads settings from v and validates them.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		Logging: LoggingSettings{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
		Tracing: v.GetBool(KeyTracingEnabled),
		Engine: EngineSettings{
			Parallelism: v.GetInt(KeyParallelism),
		},
		Output: OutputSettings{
			Format:      v.GetString(KeyOutputFormat),
			Performance: v.GetBool(KeyOutputPerformance),
		},
		Server: ServerSettings{
			Addr:            v.GetString(KeyServerAddr),
			ReadTimeout:     v.GetDuration(KeyReadTimeout),
			WriteTimeout:    v.GetDuration(KeyWriteTimeout),
			ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
		},
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that every setting is usable.
func (s *Settings) Validate() error {
	if _, err := common.ParseLevel(s.Logging.Level); err != nil {
		return err
	}
	switch s.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log format %q", common.ErrInvalidConfig, s.Logging.Format)
	}
	if s.Engine.Parallelism < 1 {
		return fmt.Errorf("%w: %s must be at least 1, got %d", common.ErrInvalidConfig, KeyParallelism, s.Engine.Parallelism)
	}
	switch s.Output.Format {
	case FormatJSON, FormatTable:
	default:
		return fmt.Errorf("%w: output format %q", common.ErrInvalidConfig, s.Output.Format)
	}
	if s.Server.Addr == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyServerAddr)
	}
	return nil
}
