package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
)

func TestInitLogger_JSONWithService(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	InitLoggerWithWriter(&buf, "feedback-form", "production", "warn")

	log.Info().Msg("dropped")
	log.Warn().Msg("kept")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "kept", line["message"])
	assert.Equal(t, "feedback-form", line["service"])
	assert.Equal(t, "warn", line["level"])
}

func TestInitLogger_BadLevelFallsBackToInfo(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	InitLoggerWithWriter(&buf, "feedback-form", "production", "loud")

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestLoggerFromContext_NoSpan(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerWithWriter(&buf, "feedback-form", "production", "info")

	LoggerFromContext(context.Background()).Info().Msg("hello")

	assert.NotContains(t, buf.String(), "trace_id")
	assert.Contains(t, buf.String(), "hello")
}

func TestSeverityOf(t *testing.T) {
	assert.Equal(t, otellog.SeverityDebug, severityOf(zerolog.DebugLevel))
	assert.Equal(t, otellog.SeverityInfo, severityOf(zerolog.InfoLevel))
	assert.Equal(t, otellog.SeverityWarn, severityOf(zerolog.WarnLevel))
	assert.Equal(t, otellog.SeverityError, severityOf(zerolog.ErrorLevel))
	assert.Equal(t, otellog.SeverityFatal, severityOf(zerolog.PanicLevel))
}

func TestOTelLogHook_NoProviderIsSafe(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerWithWriter(&buf, "feedback-form", "production", "info")

	assert.NotPanics(t, func() {
		log.Error().Msg("forwarded")
	})
	assert.Contains(t, buf.String(), "forwarded")
}
