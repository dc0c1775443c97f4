package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/multierr"
)

func TestIsValidation(t *testing.T) {
	err := fmt.Errorf("checkout: %w", NewFieldError("lines", "cart is empty"))

	assert.True(t, IsValidation(err))
	assert.False(t, IsValidation(ErrBadRequest))
	assert.Equal(t, http.StatusUnprocessableEntity, GetAppError(err).Code)
	assert.Contains(t, err.Error(), "lines cart is empty")
}

func TestRemoteErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("sync: %w", NewRemoteError("createSale", cause))

	assert.True(t, IsRemote(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "sync: remote createSale: connection refused", err.Error())

	status := &RemoteError{Op: "getCurrentActor", StatusCode: http.StatusUnauthorized, Message: "Unauthorized"}
	assert.Equal(t, "remote getCurrentActor: 401 Unauthorized", status.Error())
}

func TestPartialWriteThroughMultierr(t *testing.T) {
	combined := multierr.Combine(
		&PartialWriteError{SaleID: "s1", Effect: "stock", Err: errors.New("timeout")},
		&PartialWriteError{SaleID: "s1", Effect: "cash", Err: errors.New("timeout")},
	)

	assert.True(t, IsPartialWrite(combined))
	assert.Len(t, multierr.Errors(combined), 2)
}

func TestCacheUnavailable(t *testing.T) {
	assert.True(t, IsCacheUnavailable(fmt.Errorf("read products: %w", ErrCacheUnavailable)))
	assert.False(t, IsCacheUnavailable(errors.New("other")))
}
