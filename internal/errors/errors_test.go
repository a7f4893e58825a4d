package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpError_MessageIncludesCause(t *testing.T) {
	err := NewStorageError("append record", stderrors.New("disk full"))
	assert.Equal(t, "storage: append record: disk full", err.Error())
}

func TestOpError_MessageWithoutCause(t *testing.T) {
	err := NewStorageError("named range LastAlarm is not defined", nil)
	assert.Equal(t, "storage: named range LastAlarm is not defined", err.Error())
}

func TestOpError_Unwrap(t *testing.T) {
	cause := stderrors.New("smtp down")
	err := NewDispatchError("send", cause)
	assert.ErrorIs(t, err, cause)
}

func TestTypeOf_WrappedChain(t *testing.T) {
	err := fmt.Errorf("sweep: %w", NewScheduleStateError("bad frequency", nil))
	assert.Equal(t, ErrorTypeScheduleState, TypeOf(err))
}

func TestTypeOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrorTypeInternal, TypeOf(stderrors.New("boom")))
}

func TestTypeOf_Kinds(t *testing.T) {
	assert.Equal(t, ErrorTypeStorage, TypeOf(NewStorageError("x", nil)))
	assert.Equal(t, ErrorTypeDispatch, TypeOf(NewDispatchError("x", nil)))
	assert.Equal(t, ErrorTypeInternal, TypeOf(NewInternalError("x", nil)))
}
