package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readRecords(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		var r map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r), "line: %s", sc.Text())
		records = append(records, r)
	}
	return records
}

func TestInitFileLogging(t *testing.T) {
	Shutdown()

	dir := t.TempDir()
	Init(Config{Dir: dir})
	defer Shutdown()

	Logger().Info("test_message", "key", "value")

	records := readRecords(t, filepath.Join(dir, LogFileName))
	require.Len(t, records, 1)
	assert.Equal(t, "test_message", records[0]["msg"])
	assert.Equal(t, "value", records[0]["key"])
}

func TestInitDiscard(t *testing.T) {
	Shutdown()

	Init(Config{})
	defer Shutdown()

	// Should not panic
	Logger().Info("this goes nowhere")
	ForComponent(CompREPL).Warn("neither does this")
}

func TestForComponentBeforeInit(t *testing.T) {
	Shutdown()

	// Created before Init, like package-level loggers.
	cl := ForComponent(CompStore)

	dir := t.TempDir()
	Init(Config{Dir: dir})
	defer Shutdown()

	cl.Info("store loaded", "records", 3)

	records := readRecords(t, filepath.Join(dir, LogFileName))
	require.Len(t, records, 1)
	assert.Equal(t, CompStore, records[0]["component"])
	assert.EqualValues(t, 3, records[0]["records"])
}

func TestLevelFiltering(t *testing.T) {
	Shutdown()

	dir := t.TempDir()
	Init(Config{Dir: dir, Level: "warn"})
	defer Shutdown()

	l := ForComponent(CompSession)
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")

	records := readRecords(t, filepath.Join(dir, LogFileName))
	require.Len(t, records, 1)
	assert.Equal(t, "shown", records[0]["msg"])
}

func TestDebugConsole(t *testing.T) {
	Shutdown()

	var console bytes.Buffer
	dir := t.TempDir()
	Init(Config{Dir: dir, Debug: true, Console: &console, Level: "debug"})
	defer Shutdown()

	ForComponent(CompCLI).Debug("both sinks")

	assert.Contains(t, console.String(), "both sinks")
	assert.Contains(t, console.String(), "component="+CompCLI)
	records := readRecords(t, filepath.Join(dir, LogFileName))
	require.Len(t, records, 1)
	assert.Equal(t, "both sinks", records[0]["msg"])
}

func TestConsoleWriterFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "console")
	require.NoError(t, err)
	defer f.Close()

	w, color := consoleWriter(f)
	require.NotNil(t, w)
	assert.False(t, color, "a regular file is not a terminal")

	Shutdown()
	Init(Config{Debug: true, Console: f, Level: "info"})
	defer Shutdown()
	ForComponent(CompStore).Info("to a file")

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Contains(t, string(data), "to a file")
	assert.Contains(t, string(data), "component="+CompStore)
	assert.NotContains(t, string(data), "\x1b[")
}

func TestConsoleWriterBuffer(t *testing.T) {
	var buf bytes.Buffer
	w, color := consoleWriter(&buf)
	assert.Same(t, &buf, w)
	assert.False(t, color)

	w, _ = consoleWriter(nil)
	assert.NotNil(t, w)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", ParseLevel("debug").String())
	assert.Equal(t, "WARN", ParseLevel("warn").String())
	assert.Equal(t, "ERROR", ParseLevel("error").String())
	assert.Equal(t, "INFO", ParseLevel("bogus").String())
}
