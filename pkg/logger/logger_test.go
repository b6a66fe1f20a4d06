package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &out))
	return out
}

func TestLogger_NivelInvalidoUsaInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Env: "production", Level: "verbose"}, &buf)

	l.zl.Debug().Msg("oculto")
	assert.Zero(t, buf.Len())

	l.Info().Str("item_id", "item-1").Msg("visible")
	line := lastLine(t, &buf)
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "item-1", line["item_id"])
}

func TestLogger_NivelWarnFiltraInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Env: "production", Level: "WARN"}, &buf)
	l.Info().Msg("oculto")
	assert.Zero(t, buf.Len())
	l.Warn().Msg("desfase")
	assert.Equal(t, "warn", lastLine(t, &buf)["level"])
}

func TestLogger_CtxAgregaTraza(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Env: "production", Level: "info"}, &buf)

	assert.Same(t, l, l.Ctx(context.Background()), "sin span no se crea sublogger")

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x01, 0x02},
		SpanID:  trace.SpanID{0x03},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	l.Ctx(ctx).Info().Msg("movimiento registrado")

	line := lastLine(t, &buf)
	assert.Equal(t, sc.TraceID().String(), line["trace_id"])
	assert.Equal(t, sc.SpanID().String(), line["span_id"])
}
