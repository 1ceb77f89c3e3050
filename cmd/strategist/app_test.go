package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrap_InvalidSettingsFallBackToDefaults(t *testing.T) {
	tests := []struct {
		name     string
		settings string
		check    func(t *testing.T, rt *app)
	}{
		{
			name:     "zero chunk size",
			settings: "vector_db:\n  chunk_size: 0\n",
			check: func(t *testing.T, rt *app) {
				assert.Equal(t, 10, rt.cfg.VectorDB.ChunkSize)
			},
		},
		{
			name:     "bad port keeps other overrides",
			settings: "server:\n  port: 70000\nstrategist:\n  top_k: 5\n",
			check: func(t *testing.T, rt *app) {
				assert.Equal(t, 8501, rt.cfg.Server.Port)
				assert.Equal(t, 5, rt.cfg.Strategist.TopK)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			t.Setenv("GROQ_API_KEY", "gsk_test")
			path := filepath.Join(dir, "settings.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.settings), 0600))

			var stderr bytes.Buffer
			rt, err := bootstrap(context.Background(), path, &stderr)
			require.NoError(t, err)
			require.NotNil(t, rt)
			t.Cleanup(rt.Close)

			tt.check(t, rt)
			require.NoError(t, rt.cfg.Validate())
			assert.Contains(t, stderr.String(), "invalid setting, using default")
		})
	}
}

func TestBootstrap_ValidSettingsNoWarning(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("GROQ_API_KEY", "gsk_test")
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vector_db:\n  chunk_size: 4\n"), 0600))

	var stderr bytes.Buffer
	rt, err := bootstrap(context.Background(), path, &stderr)
	require.NoError(t, err)
	t.Cleanup(rt.Close)

	assert.Equal(t, 4, rt.cfg.VectorDB.ChunkSize)
	assert.NotContains(t, stderr.String(), "invalid setting")
}
