package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/reglet-dev/portbridge/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingInputError(t *testing.T) {
	err := &MissingInputError{Port: "custDataPort", Path: "data/cust.csv", Err: fs.ErrNotExist}

	assert.Equal(t, "input for custDataPort unavailable at data/cust.csv: file does not exist", err.Error())
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.True(t, err.NotFound())

	detail := err.ToErrorDetail()
	assert.Equal(t, "input", detail.Type)
	assert.Equal(t, "custDataPort", detail.Code)
	assert.True(t, detail.IsNotFound)
}

func TestMissingInputError_PermissionDenied(t *testing.T) {
	err := &MissingInputError{Path: "data/acc.csv", Err: fs.ErrPermission}

	assert.Equal(t, "input unavailable at data/acc.csv: permission denied", err.Error())
	assert.False(t, err.NotFound())
}

func TestWriteError(t *testing.T) {
	baseErr := fmt.Errorf("read-only file system")
	err := &WriteError{Port: "userFilePort", Path: "users.json", Err: baseErr}

	assert.Equal(t, "failed to write userFilePort output to users.json: read-only file system", err.Error())
	assert.True(t, errors.Is(err, baseErr))

	wrapped := fmt.Errorf("bridge run: %w", err)
	var writeErr *WriteError
	require.True(t, errors.As(wrapped, &writeErr))
	assert.Equal(t, "users.json", writeErr.Path)
}

func TestPortError(t *testing.T) {
	err := &PortError{Port: "bogusPort", Direction: entities.Inbound}
	assert.Equal(t, `unknown inbound port: "bogusPort"`, err.Error())

	err = &PortError{Port: "bogusPort"}
	assert.Equal(t, `unknown port: "bogusPort"`, err.Error())
}

func TestUnitError(t *testing.T) {
	baseErr := fmt.Errorf("wasm trap: unreachable")
	err := &UnitError{Operation: "deliver", Port: "txnDataPort", Err: baseErr}

	assert.Equal(t, "unit deliver on txnDataPort failed: wasm trap: unreachable", err.Error())
	assert.True(t, errors.Is(err, baseErr))

	err = &UnitError{Operation: "initialize", Err: baseErr}
	assert.Equal(t, "unit initialize failed: wasm trap: unreachable", err.Error())
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "queue_size", Err: fmt.Errorf("must be at least 1")}
	assert.Equal(t, "config validation failed for field 'queue_size': must be at least 1", err.Error())

	err = &ConfigError{Err: fmt.Errorf("empty document")}
	assert.Equal(t, "config validation failed: empty document", err.Error())
}

func TestToErrorDetail(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType string
	}{
		{name: "missing input", err: &MissingInputError{Path: "x", Err: fs.ErrNotExist}, wantType: "input"},
		{name: "write", err: &WriteError{Path: "x", Err: fs.ErrPermission}, wantType: "output"},
		{name: "port", err: &PortError{Port: "p"}, wantType: "port"},
		{name: "unit", err: &UnitError{Operation: "deliver", Err: errors.New("boom")}, wantType: "unit"},
		{name: "config", err: &ConfigError{Err: errors.New("bad")}, wantType: "config"},
		{name: "wrapped", err: fmt.Errorf("ctx: %w", &PortError{Port: "p"}), wantType: "port"},
		{name: "generic", err: errors.New("plain"), wantType: "internal"},
		{name: "detail", err: entities.NewErrorDetail("custom", "msg"), wantType: "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail := ToErrorDetail(tt.err)
			require.NotNil(t, detail)
			assert.Equal(t, tt.wantType, detail.Type)
		})
	}

	assert.Nil(t, ToErrorDetail(nil))
}
