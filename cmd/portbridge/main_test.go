package main

import (
	"bytes"
	"context"
	"encoding/json"
	stdErrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/reglet-dev/portbridge/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoModule(t *testing.T) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("..", "..", "host", "testdata", "echo.wasm"))
	require.NoError(t, err)
	return path
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeInputs(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "data", name), []byte(content), 0o644))
	}
}

func TestRun_DefaultWiring(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir, map[string]string{
		"cust.csv": "id,name\n1,Alice",
		"acc.csv":  "id,owner\nA1,1",
		"txn.csv":  "id,account,amount\nt1,A1,10",
	})

	_, stderr, err := execute(t, "--module", echoModule(t), "--base-dir", dir)
	require.NoError(t, err, stderr)

	for file, want := range map[string]string{
		"users.json":    "id,name\n1,Alice",
		"accounts.json": "id,owner\nA1,1",
		"batch.json":    "id,account,amount\nt1,A1,10",
	} {
		got, err := os.ReadFile(filepath.Join(dir, file))
		require.NoError(t, err, file)
		assert.Equal(t, want, string(got), file)
	}
	assert.Contains(t, stderr, "output received")
}

func TestRun_MissingInputIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir, map[string]string{"cust.csv": "id,name\n1,Alice"})

	_, stderr, err := execute(t, "--module", echoModule(t), "--base-dir", dir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "users.json"))
	assert.NoFileExists(t, filepath.Join(dir, "accounts.json"))
	assert.Contains(t, stderr, "some inputs were never delivered")
}

func TestRun_VerboseLogsOutboundHandling(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir, map[string]string{"cust.csv": "id,name\n1,Alice"})

	_, stderr, err := execute(t, "--module", echoModule(t), "--base-dir", dir)
	require.NoError(t, err, stderr)
	assert.NotContains(t, stderr, "outbound message handled")

	_, stderr, err = execute(t, "--module", echoModule(t), "--base-dir", dir, "--verbose")
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, "outbound message handled")
	assert.Contains(t, stderr, "port=userFilePort")
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir, map[string]string{"cust.csv": "id,name\n1,Alice"})

	cfg := "module: " + echoModule(t) + "\n" +
		"base_dir: " + dir + "\n" +
		"log_payloads: false\n" +
		"inputs:\n  - port: custDataPort\n    path: data/cust.csv\n" +
		"outputs:\n  - port: userFilePort\n    path: out/customers.json\n"
	cfgPath := filepath.Join(dir, "portbridge.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	_, stderr, err := execute(t, "--config", cfgPath)
	require.NoError(t, err, stderr)

	got, err := os.ReadFile(filepath.Join(dir, "out", "customers.json"))
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,Alice", string(got))
	assert.NotContains(t, stderr, "output received")
}

func TestRun_Failures(t *testing.T) {
	t.Run("missing config file", func(t *testing.T) {
		_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"))
		var cfgErr *errors.ConfigError
		require.True(t, stdErrors.As(err, &cfgErr))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("missing module", func(t *testing.T) {
		_, stderr, err := execute(t, "--module", "absent.wasm", "--base-dir", t.TempDir())
		require.Error(t, err)
		assert.Contains(t, stderr, "failed to read module")
	})

	t.Run("invalid module", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "app.wasm"), []byte("not wasm"), 0o644))
		_, stderr, err := execute(t, "--base-dir", dir)
		var unitErr *errors.UnitError
		require.True(t, stdErrors.As(err, &unitErr))
		assert.Contains(t, stderr, "failed to load unit")
	})

	t.Run("unwritable output", func(t *testing.T) {
		dir := t.TempDir()
		writeInputs(t, dir, map[string]string{"cust.csv": "id,name\n1,Alice"})
		require.NoError(t, os.WriteFile(filepath.Join(dir, "blocker"), []byte("x"), 0o644))
		cfg := "outputs:\n  - port: userFilePort\n    path: blocker/users.json\n"
		cfgPath := filepath.Join(dir, "portbridge.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

		_, _, err := execute(t, "--config", cfgPath, "--module", echoModule(t), "--base-dir", dir)
		var writeErr *errors.WriteError
		require.True(t, stdErrors.As(err, &writeErr))
		assert.Equal(t, "blocker/users.json", writeErr.Path)
	})

	t.Run("input over payload limit", func(t *testing.T) {
		dir := t.TempDir()
		writeInputs(t, dir, map[string]string{"cust.csv": "id,name\n1,Alice"})
		cfgPath := filepath.Join(dir, "portbridge.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("max_payload_size: 8\n"), 0o644))

		_, _, err := execute(t, "--config", cfgPath, "--module", echoModule(t), "--base-dir", dir)
		var unitErr *errors.UnitError
		require.True(t, stdErrors.As(err, &unitErr))
		assert.ErrorIs(t, err, errors.ErrPayloadTooLarge)
		assert.NoFileExists(t, filepath.Join(dir, "users.json"))
	})

	t.Run("unexpected argument", func(t *testing.T) {
		_, _, err := execute(t, "extra")
		require.Error(t, err)
	})
}

func TestSchemaCmd(t *testing.T) {
	stdout, _, err := execute(t, "schema")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "portbridge configuration", doc["title"])
	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "base_dir")
	assert.Contains(t, props, "inputs")
}
