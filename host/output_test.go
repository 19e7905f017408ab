package host

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOutput(limit int) (*outputWriter, *bytes.Buffer) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	return newOutputWriter(logger, "unit-1", "stdout", limit), &logs
}

func TestOutputWriter_Lines(t *testing.T) {
	w, logs := newTestOutput(0)

	n, err := w.Write([]byte("hello\nwor"))
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	_, _ = w.Write([]byte("ld\n"))

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "msg=hello")
	assert.Contains(t, lines[0], "unit=unit-1")
	assert.Contains(t, lines[0], "stream=stdout")
	assert.Contains(t, lines[1], "msg=world")
}

func TestOutputWriter_Flush(t *testing.T) {
	w, logs := newTestOutput(0)

	_, _ = w.Write([]byte("no newline"))
	assert.Empty(t, logs.String())

	w.Flush()
	assert.Contains(t, logs.String(), `msg="no newline"`)

	logs.Reset()
	w.Flush()
	assert.Empty(t, logs.String())
}

func TestOutputWriter_LongLineIsSplit(t *testing.T) {
	w, logs := newTestOutput(4)

	n, err := w.Write([]byte("abcdefghij\n"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "msg=abcd")
	assert.Contains(t, lines[0], "truncated=true")
	assert.Contains(t, lines[1], "msg=efgh")
	assert.Contains(t, lines[2], "msg=ij")
	assert.NotContains(t, lines[2], "truncated")
}
