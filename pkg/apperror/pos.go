package apperror

import (
	"errors"
	"fmt"
)

// ErrCacheUnavailable is returned by every local store operation when the
// store could not be opened. Callers treat it the same as an empty cache.
var ErrCacheUnavailable = errors.New("local store unavailable")

// RemoteError wraps a failed call to the store of record.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("remote %s: %d %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("remote %s: status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
	default:
		return "remote " + e.Op + ": " + e.Message
	}
}

func (e *RemoteError) Unwrap() error { return e.Err }

// NewRemoteError wraps err as a failed remote operation.
func NewRemoteError(op string, err error) *RemoteError {
	return &RemoteError{Op: op, Err: err}
}

// PartialWriteError reports a side effect that failed after the sale header
// and items were committed.
type PartialWriteError struct {
	SaleID string
	Effect string
	Err    error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("sale %s committed but %s failed: %v", e.SaleID, e.Effect, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

// IsRemote reports whether err is, or wraps, a RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// IsPartialWrite reports whether err is, or wraps, a PartialWriteError.
func IsPartialWrite(err error) bool {
	var pe *PartialWriteError
	return errors.As(err, &pe)
}

func IsCacheUnavailable(err error) bool {
	return errors.Is(err, ErrCacheUnavailable)
}
