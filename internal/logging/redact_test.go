package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/fyrsmithlabs/strategist/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const groqKey = "gsk_abcdefghijklmnopqrstuvwxyz012345"

func TestSecretAndRedactedString(t *testing.T) {
	tl := NewTestLogger()
	tl.Info(context.Background(), "configured",
		Secret("groq_api_key", config.Secret(groqKey)),
		RedactedString("token", "abc"),
	)

	tl.AssertField(t, "configured", "groq_api_key", "[REDACTED:36]")
	tl.AssertField(t, "configured", "token", "[REDACTED:3]")
	tl.AssertNoSecrets(t)
}

func TestRedactingEncoder_EntryFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLoggerWithWriter(jsonConfig(zapcore.InfoLevel), &buf, nil)
	require.NoError(t, err)

	l.Info(context.Background(), "calling groq with "+groqKey,
		zap.String("groq_api_key", groqKey),
		zap.String("header", "Bearer xyz.abc"),
		zap.String("model", "llama-3.3-70b-versatile"),
		zap.ByteString("password", []byte("hunter2")),
		zap.Any("credential", map[string]string{"user": "me"}),
	)

	out := buf.String()
	assert.NotContains(t, out, groqKey)
	assert.NotContains(t, out, "hunter2")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "calling groq with [REDACTED]", lines[0]["msg"])
	assert.Equal(t, "[REDACTED]", lines[0]["groq_api_key"])
	assert.Equal(t, "[REDACTED:pattern]", lines[0]["header"])
	assert.Equal(t, "llama-3.3-70b-versatile", lines[0]["model"])
	assert.Equal(t, "[REDACTED]", lines[0]["password"])
	assert.Equal(t, "[REDACTED]", lines[0]["credential"])
}

func TestRedactingEncoder_WithFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLoggerWithWriter(jsonConfig(zapcore.InfoLevel), &buf, nil)
	require.NoError(t, err)

	l.With(zap.String("api_key", "plain")).Info(context.Background(), "child")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "[REDACTED]", lines[0]["api_key"])
}

func TestRedactingEncoder_Disabled(t *testing.T) {
	var buf bytes.Buffer
	cfg := jsonConfig(zapcore.InfoLevel)
	cfg.Redaction.Enabled = false
	l, err := NewLoggerWithWriter(cfg, &buf, nil)
	require.NoError(t, err)

	l.Info(context.Background(), "raw", zap.String("password", "visible"))

	assert.Contains(t, buf.String(), "visible")
}

func TestNewRedactingEncoder_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RedactionConfig
		wantErr string
	}{
		{"invalid pattern", RedactionConfig{Enabled: true, Patterns: []string{`(?i)bearer\s+\S+`, "[invalid("}}, "invalid redaction pattern"},
		{"pattern too long", RedactionConfig{Enabled: true, Patterns: []string{string(bytes.Repeat([]byte("a"), 201))}}, "pattern too long"},
		{"disabled skips validation", RedactionConfig{Enabled: false, Patterns: []string{"[invalid("}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewRedactingEncoder(newEncoder("json"), tt.cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.NotNil(t, enc)
				return
			}
			require.Error(t, err)
			assert.Nil(t, enc)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRedactingEncoder_ArrayAndObject(t *testing.T) {
	enc, err := NewRedactingEncoder(newEncoder("json"), RedactionConfig{
		Enabled: true,
		Fields:  []string{"secret_array", "Credentials"},
	})
	require.NoError(t, err)

	assert.NoError(t, enc.AddArray("secret_array", zapcore.ArrayMarshalerFunc(func(zapcore.ArrayEncoder) error {
		t.Fatal("sensitive array should not be marshaled")
		return nil
	})))
	assert.NoError(t, enc.AddObject("credentials", zapcore.ObjectMarshalerFunc(func(zapcore.ObjectEncoder) error {
		t.Fatal("sensitive object should not be marshaled")
		return nil
	})))
	enc.AddBinary("secret_array", []byte{0x01})
}
