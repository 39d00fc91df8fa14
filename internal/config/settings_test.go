package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/roundup/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	s, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "info", s.Logging.Level)
	assert.Equal(t, "console", s.Logging.Format)
	assert.False(t, s.Tracing)
	assert.Equal(t, 4, s.Engine.Parallelism)
	assert.Equal(t, FormatJSON, s.Output.Format)
	assert.True(t, s.Output.Performance)
	assert.Equal(t, ":5477", s.Server.Addr)
	assert.Equal(t, 10*time.Second, s.Server.ReadTimeout)
	assert.Equal(t, 5*time.Second, s.Server.ShutdownTimeout)
}

func TestLoad_FromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
logging:
  level: debug
  format: json
tracing:
  enabled: true
engine:
  parallelism: 8
output:
  format: table
  performance: false
server:
  addr: "127.0.0.1:9000"
  write_timeout: 1m
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.Logging.Level)
	assert.Equal(t, "json", s.Logging.Format)
	assert.True(t, s.Tracing)
	assert.Equal(t, 8, s.Engine.Parallelism)
	assert.Equal(t, FormatTable, s.Output.Format)
	assert.False(t, s.Output.Performance)
	assert.Equal(t, "127.0.0.1:9000", s.Server.Addr)
	assert.Equal(t, time.Minute, s.Server.WriteTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   any
		wantErr error
	}{
		{name: "bad log level", key: KeyLogLevel, value: "loud", wantErr: common.ErrInvalidConfig},
		{name: "bad log format", key: KeyLogFormat, value: "xml", wantErr: common.ErrInvalidConfig},
		{name: "zero parallelism", key: KeyParallelism, value: 0, wantErr: common.ErrInvalidConfig},
		{name: "bad output format", key: KeyOutputFormat, value: "csv", wantErr: common.ErrInvalidConfig},
		{name: "empty server address", key: KeyServerAddr, value: "", wantErr: common.ErrMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("ROUNDUP_TEST_DIR", "/tmp/roundup")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "in.json"), ExpandPath("~/in.json"))
	assert.Equal(t, "/tmp/roundup/out", ExpandPath("$ROUNDUP_TEST_DIR/out"))
	assert.Equal(t, "relative/path", ExpandPath("relative/path"))
}

func TestDir(t *testing.T) {
	dir, err := Dir()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir) || dir != "")
	assert.Equal(t, "roundup", filepath.Base(dir))
}
