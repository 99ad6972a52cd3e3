package ferrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathError(t *testing.T) {
	err := NewPathError("/x/y", NotInAllowedBase, "outside allowed base")
	assert.Equal(t, "INVALID_PATH", err.Code())
	assert.Equal(t, "/x/y", err.Path)
	assert.Equal(t, NotInAllowedBase, err.Reason)
	assert.Equal(t, "outside allowed base", err.Error())
}

func TestStoreError_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStoreError("insert", "failed to insert record", cause)

	assert.Equal(t, "STORE_ERROR", err.Code())
	assert.Equal(t, "insert", err.Operation)
	assert.Equal(t, "failed to insert record: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestFatalInconsistency(t *testing.T) {
	cause := errors.New("no rows affected")
	err := NewFatalInconsistency("a/b", "f", "failed to update record", cause)

	assert.Equal(t, "FATAL_INCONSISTENCY", err.Code())
	assert.Equal(t, "a/b", err.Dir)
	assert.Equal(t, "f", err.Filename)
	assert.ErrorIs(t, err, cause)

	var fatal *FatalInconsistency
	wrapped := fmt.Errorf("run aborted: %w", err)
	require.True(t, errors.As(wrapped, &fatal))
	assert.Equal(t, "f", fatal.Filename)
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("table", "invalid table name")
	assert.Equal(t, "CONFIG_ERROR", err.Code())
	assert.Equal(t, "table", err.Key)

	var ie IndexerError
	assert.True(t, errors.As(error(err), &ie))
}
