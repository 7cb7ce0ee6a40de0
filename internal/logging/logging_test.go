package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace": LevelTrace,
		"DEB":   slog.LevelDebug,
		" info": slog.LevelInfo,
		"Warn":  slog.LevelWarn,
		"err":   slog.LevelError,
		"loud":  slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, want, ParseLevel(input))
		})
	}
}

func TestLookupLevelRejectsUnknownText(t *testing.T) {
	_, ok := LookupLevel("loud")
	assert.False(t, ok)

	level, ok := LookupLevel("tr")
	assert.True(t, ok)
	assert.Equal(t, LevelTrace, level)
}

func TestUnknownLevelHidesTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, ParseLevel("loud"), false))
	LogTrace(logger, "per-node trace")
	logger.Debug("debug")
	logger.Info("shown")

	assert.NotContains(t, buf.String(), "TRACE")
	assert.NotContains(t, buf.String(), "debug")
	assert.Contains(t, buf.String(), "level=INFO msg=shown")
}

func TestErrAttr(t *testing.T) {
	assert.True(t, Err(nil).Equal(slog.Attr{}))
	attr := Err(errors.New("boom"))
	assert.Equal(t, "err", attr.Key)
	assert.Equal(t, "boom", attr.Value.Any().(error).Error())
}

func TestNewHandlerRendersTraceLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, LevelTrace, false))
	LogTrace(logger, "visiting", "node", "paragraph")

	assert.Contains(t, buf.String(), "level=TRACE")
	assert.Contains(t, buf.String(), "node=paragraph")
}

func TestNewHandlerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, slog.LevelWarn, true))
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"level":"WARN"`)
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))
	logger := slog.Default()
	assert.Same(t, logger, OrDiscard(logger))
}
