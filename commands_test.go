package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const sampleCall = `{"utterances": [
  {"speaker": "Agent", "start": 0, "end": 10, "text": "Your balance is $40."},
  {"speaker": "Customer", "start": 8, "end": 12, "text": "ok"}
]}`

func TestAnalyzeCommandJSON(t *testing.T) {
	conf := writeFile(t, "config.yaml", "pipeline:\n  log_level: error\n")
	call := writeFile(t, "call.json", sampleCall)

	out, err := runCLI(t, "--config", conf, "analyze", call)
	require.NoError(t, err)

	var r map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, 12.0, r["durations"].(map[string]any)["total_duration"])
	assert.Equal(t, true, r["compliance"].(map[string]any)["violation"])
}

func TestAnalyzeCommandText(t *testing.T) {
	conf := writeFile(t, "config.yaml", "pipeline:\n  log_level: error\n")
	call := writeFile(t, "call.json", sampleCall)

	out, err := runCLI(t, "--config", conf, "analyze", "-f", "text", call)
	require.NoError(t, err)
	assert.Contains(t, out, "Disclosure before verification: yes")
}

func TestAnalyzeCommandRejectsBadMatcher(t *testing.T) {
	conf := writeFile(t, "config.yaml", "pipeline:\n  log_level: error\n")
	call := writeFile(t, "call.json", sampleCall)

	_, err := runCLI(t, "--config", conf, "analyze", "--matcher", "psychic", call)
	assert.Error(t, err)
}

func TestMetricsCommandTolerance(t *testing.T) {
	conf := writeFile(t, "config.yaml", "pipeline:\n  log_level: error\n")
	call := writeFile(t, "call.yaml", "- {speaker: Agent, start: 0, end: 1}\n- {speaker: Customer, start: 1.5, end: 2}\n")

	out, err := runCLI(t, "--config", conf, "metrics", call)
	require.NoError(t, err)
	var r map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, 0.5, r["durations"]["silence_duration"])

	out, err = runCLI(t, "--config", conf, "metrics", "--tolerance", "0.5", call)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, 0.0, r["durations"]["silence_duration"])
}

func TestUnknownLogFormat(t *testing.T) {
	conf := writeFile(t, "config.yaml", "pipeline:\n  log_level: error\n")
	call := writeFile(t, "call.json", sampleCall)
	_, err := runCLI(t, "--config", conf, "--log-format", "xml", "metrics", call)
	assert.Error(t, err)
}

func TestDetectorCommands(t *testing.T) {
	conf := writeFile(t, "config.yaml", "pipeline:\n  log_level: error\n")
	call := writeFile(t, "call.json", sampleCall)

	out, err := runCLI(t, "--config", conf, "compliance", call)
	require.NoError(t, err)
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "violated", v["state"])

	out, err = runCLI(t, "--config", conf, "profanity", call)
	require.NoError(t, err)
	var f map[string]bool
	require.NoError(t, json.Unmarshal([]byte(out), &f))
	assert.False(t, f["agent_profanity"])
	assert.False(t, f["counterpart_profanity"])
}

func TestMetricsCommandRejectsNegativeTolerance(t *testing.T) {
	conf := writeFile(t, "config.yaml", "pipeline:\n  log_level: error\n")
	call := writeFile(t, "call.json", sampleCall)

	out, err := runCLI(t, "--config", conf, "metrics", "--tolerance", "-2", call)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config invalid")
	assert.Empty(t, out)
}
