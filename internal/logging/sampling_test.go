package logging

import (
	"testing"
	"time"

	"github.com/fyrsmithlabs/strategist/internal/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func sampled(levels map[zapcore.Level]LevelSamplingConfig) (*zap.Logger, *observer.ObservedLogs) {
	core, observed := observer.New(TraceLevel)
	cfg := SamplingConfig{
		Enabled: true,
		Tick:    config.Duration(time.Minute),
		Levels:  levels,
	}
	return zap.New(newSampledCore(core, cfg)), observed
}

func TestSampling_PerLevelRates(t *testing.T) {
	logger, observed := sampled(map[zapcore.Level]LevelSamplingConfig{
		zapcore.DebugLevel: {Initial: 1, Thereafter: 0},
		zapcore.InfoLevel:  {Initial: 3, Thereafter: 0},
	})

	for i := 0; i < 10; i++ {
		logger.Debug("retrieved chunk")
		logger.Info("cache hit")
		logger.Warn("slow generation")
		logger.Error("generation failed")
	}

	assert.Equal(t, 1, observed.FilterMessage("retrieved chunk").Len())
	assert.Equal(t, 3, observed.FilterMessage("cache hit").Len())
	assert.Equal(t, 10, observed.FilterMessage("slow generation").Len(), "unlisted level passes through")
	assert.Equal(t, 10, observed.FilterMessage("generation failed").Len())
}

func TestSampling_Thereafter(t *testing.T) {
	logger, observed := sampled(map[zapcore.Level]LevelSamplingConfig{
		zapcore.InfoLevel: {Initial: 2, Thereafter: 4},
	})

	for i := 0; i < 10; i++ {
		logger.Info("tick")
	}

	// 2 initial, then every 4th of the remaining 8.
	assert.Equal(t, 4, observed.Len())
}

func TestSampling_DistinctMessagesCountedSeparately(t *testing.T) {
	logger, observed := sampled(map[zapcore.Level]LevelSamplingConfig{
		zapcore.InfoLevel: {Initial: 1, Thereafter: 0},
	})

	logger.Info("a")
	logger.Info("a")
	logger.Info("b")

	assert.Equal(t, 2, observed.Len())
}

func TestSampling_Disabled(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	wrapped := newSampledCore(core, SamplingConfig{Enabled: false, Levels: DefaultLevelSamplingConfig()})
	assert.Same(t, core, wrapped)

	logger := zap.New(wrapped)
	for i := 0; i < 200; i++ {
		logger.Info("same")
	}
	assert.Equal(t, 200, observed.Len())
}

func TestLevelFilterCore_With(t *testing.T) {
	core, observed := observer.New(TraceLevel)
	filtered := &levelFilterCore{
		Core:  core,
		allow: func(l zapcore.Level) bool { return l >= zapcore.WarnLevel },
	}

	logger := zap.New(filtered).With(zap.String("component", "generator"))
	logger.Info("dropped")
	logger.Warn("kept")

	entries := observed.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "kept", entries[0].Message)
		assert.Equal(t, "generator", entries[0].ContextMap()["component"])
	}
	assert.False(t, filtered.Enabled(zapcore.InfoLevel))
}
