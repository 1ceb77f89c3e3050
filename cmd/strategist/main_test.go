package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fyrsmithlabs/strategist/internal/generator"
	"github.com/fyrsmithlabs/strategist/internal/logging"
	"github.com/fyrsmithlabs/strategist/internal/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

type fakeCreator struct {
	strategy string
	err      error
	calls    []string
}

func (f *fakeCreator) CreateStrategy(_ context.Context, description string) (string, error) {
	f.calls = append(f.calls, description)
	return f.strategy, f.err
}

func TestGenerateAndPrint(t *testing.T) {
	t.Run("prints strategy", func(t *testing.T) {
		var out bytes.Buffer
		fake := &fakeCreator{strategy: "Target hikers on trail forums."}

		err := generateAndPrint(context.Background(), fake, "eco bottle", false, t.TempDir(), &out, logging.NewNop())
		require.NoError(t, err)
		assert.Equal(t, "Target hikers on trail forums.\n", out.String())
		assert.Equal(t, []string{"eco bottle"}, fake.calls)
	})

	t.Run("save writes pdf", func(t *testing.T) {
		var out bytes.Buffer
		dir := t.TempDir()
		fake := &fakeCreator{strategy: "Partner with outdoor retailers."}

		err := generateAndPrint(context.Background(), fake, "eco bottle", true, dir, &out, logging.NewNop())
		require.NoError(t, err)

		path := filepath.Join(dir, "strategy_eco_bottle.pdf")
		assert.FileExists(t, path)
		assert.Contains(t, out.String(), "Strategy saved to "+path)
	})

	t.Run("failure prints failure text", func(t *testing.T) {
		var out bytes.Buffer
		dir := t.TempDir()
		tl := logging.NewTestLogger()
		genErr := &rag.GenerationError{Err: errors.New("401 unauthorized")}
		fake := &fakeCreator{err: genErr}

		err := generateAndPrint(context.Background(), fake, "eco bottle", true, dir, &out, tl.Logger)
		require.ErrorIs(t, err, errReported)
		assert.Equal(t, generator.FailureText(genErr)+"\n", out.String())
		tl.AssertLogged(t, zapcore.WarnLevel, "strategy generation failed")

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestVersionCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "strategist "+version)
	assert.Contains(t, stdout.String(), "Git commit: "+gitCommit)
	assert.Contains(t, stdout.String(), "Go version:")
}

func TestSamplePDFCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	out := filepath.Join(t.TempDir(), "Marketing_Strategies.pdf")

	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{"sample-pdf", "--out", out})

	require.NoError(t, cmd.Execute())
	assert.FileExists(t, out)
	assert.Contains(t, stdout.String(), out)
}

func TestRootFlags(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})

	for _, name := range []string{"query", "add-pdf", "save"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	cfgFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, cfgFlag)
	assert.Equal(t, "settings.yaml", cfgFlag.DefValue)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"serve", "sample-pdf", "version"})
}
