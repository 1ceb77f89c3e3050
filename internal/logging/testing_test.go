package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestTestLogger_Assertions(t *testing.T) {
	tl := NewTestLogger()
	ctx := context.Background()

	tl.Info(ctx, "strategy cached", zap.String("description", "eco bottle"), zap.Int("entries", 3))
	tl.Trace(ctx, "chunk embedded")

	tl.AssertLogged(t, zapcore.InfoLevel, "cached")
	tl.AssertLogged(t, TraceLevel, "chunk embedded")
	tl.AssertNotLogged(t, zapcore.ErrorLevel, "cached")
	tl.AssertField(t, "strategy cached", "description", "eco bottle")
	tl.AssertField(t, "strategy cached", "entries", int64(3))
	tl.AssertNoSecrets(t)

	assert.Equal(t, 1, tl.FilterMessage("embedded").Len())
	assert.Len(t, tl.All(), 2)

	tl.Reset()
	assert.Empty(t, tl.All())
}

func TestTestLogger_AssertNoSecretsCatchesLeak(t *testing.T) {
	tl := NewTestLogger()
	tl.Info(context.Background(), "leak", zap.String("password", "secret123"))

	rec := &recordingTB{TB: t}
	tl.AssertNoSecrets(rec)
	assert.True(t, rec.failed)
}

type recordingTB struct {
	testing.TB
	failed bool
}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Errorf(string, ...interface{}) { r.failed = true }
