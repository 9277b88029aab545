// internal/status/errorcode.go
package status

import (
	"context"
	"errors"
)

// Error codes reported in SlotLastErrorCode.
const (
	ErrorCodeNone     uint16 = 0
	ErrorCodeGeneric  uint16 = 1
	ErrorCodeCanceled uint16 = 2
)

// ErrorCode extracts a best-effort uint16 code from an error without assuming concrete types.
// If the error does not expose a code, returns ErrorCodeGeneric.
func ErrorCode(err error) uint16 {
	if err == nil {
		return ErrorCodeNone
	}

	type coder interface{ Code() uint16 }

	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorCodeCanceled
	}

	return ErrorCodeGeneric
}
