package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestBuildLevels(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, build(&bytes.Buffer{}, tt.level).GetLevel(), tt.level)
	}
}

func TestBuildWritesUnixTimestamps(t *testing.T) {
	var buf bytes.Buffer
	l := build(&buf, "info")
	l.Info().Str("player_id", "p1").Msg("hello")

	assert.Regexp(t, `"time":\d+`, buf.String())
	assert.Contains(t, buf.String(), `"player_id":"p1"`)
	assert.Contains(t, buf.String(), `"caller":`)
}
