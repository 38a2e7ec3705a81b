package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "callscope", cfg.Pipeline.Name)
	assert.Equal(t, "info", cfg.Pipeline.LogLvl)
	assert.Equal(t, 0.1, cfg.Analysis.Tolerance)
	assert.Equal(t, MatcherPattern, cfg.Analysis.Matcher)
	assert.Equal(t, 2, cfg.Services.LLM.MaxRetries)
	assert.Equal(t, time.Minute, cfg.Services.LLM.TimeoutDuration())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  log_level: debug
analysis:
  tolerance: 0.25
  matcher: llm
services:
  llm:
    url: http://localhost:11434
    model: llama3
`)
	t.Setenv("CALLSCOPE_SERVICES_LLM_API_KEY", "sk-env")
	t.Setenv("CALLSCOPE_ANALYSIS_TOLERANCE", "0.5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Pipeline.LogLvl)
	assert.Equal(t, 0.5, cfg.Analysis.Tolerance)
	assert.Equal(t, MatcherLLM, cfg.Analysis.Matcher)
	assert.Equal(t, "llama3", cfg.Services.LLM.Model)
	assert.Equal(t, "sk-env", cfg.Services.LLM.APIKey)
}

func TestLoadGuessesFromConfigEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config", "prod"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "prod", "config.yaml"),
		[]byte("analysis:\n  tolerance: 0.3\n"), 0o644))
	chdir(t, dir)
	t.Setenv("CONFIG_ENV", "prod")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.3, cfg.Analysis.Tolerance)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative tolerance", "analysis:\n  tolerance: -1\n"},
		{"unknown matcher", "analysis:\n  matcher: magic\n"},
		{"llm without url", "analysis:\n  matcher: llm\n"},
		{"bad log level", "pipeline:\n  log_level: loud\n"},
		{"bad url", "services:\n  llm:\n    url: not a url\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config invalid")
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
