package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockInputSource is a mock implementation of InputSource for testing.
type MockInputSource struct {
	ReadFunc func(ctx context.Context, path string) (string, error)
}

func (m *MockInputSource) Read(ctx context.Context, path string) (string, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, path)
	}
	return "id,name\n1,Alice", nil
}

// MockOutputSink is a mock implementation of OutputSink for testing.
type MockOutputSink struct {
	WriteFunc func(ctx context.Context, path, payload string) error
}

func (m *MockOutputSink) Write(ctx context.Context, path, payload string) error {
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, path, payload)
	}
	return nil
}

func TestInputSource_Interface(t *testing.T) {
	var _ InputSource = (*MockInputSource)(nil)

	source := &MockInputSource{}
	got, err := source.Read(context.Background(), "data/cust.csv")
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,Alice", got)
}

func TestOutputSink_Interface(t *testing.T) {
	var _ OutputSink = (*MockOutputSink)(nil)

	var gotPath, gotPayload string
	sink := &MockOutputSink{
		WriteFunc: func(_ context.Context, path, payload string) error {
			gotPath, gotPayload = path, payload
			return nil
		},
	}
	require.NoError(t, sink.Write(context.Background(), "users.json", `{"ok":true}`))
	assert.Equal(t, "users.json", gotPath)
	assert.Equal(t, `{"ok":true}`, gotPayload)
}
