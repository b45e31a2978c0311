package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.log")
	logger, err := New(Config{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)

	logger.Component("store").Info("Agent created", zap.String("id", "agent_1"))
	logger.Debug("dropped below level")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"message":"Agent created"`)
	assert.Contains(t, out, `"logger":"store"`)
	assert.Contains(t, out, `"id":"agent_1"`)
	assert.NotContains(t, out, "dropped below level")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
		ok   bool
	}{
		{"debug", zapcore.DebugLevel, true},
		{"WARN", zapcore.WarnLevel, true},
		{"error", zapcore.ErrorLevel, true},
		{"nope", zapcore.InfoLevel, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, err == nil)
		})
	}
}

func TestConstructorsNeverReturnNil(t *testing.T) {
	assert.NotNil(t, NewDefault().Logger)
	assert.NotNil(t, NewDevelopment().Logger)
	assert.NotNil(t, NewNop().Logger)
	assert.Equal(t, "console", encodingFormat(true))
	assert.Equal(t, "json", encodingFormat(false))
}
