package usecase

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorStatus(t *testing.T) {
	cases := map[error]int{
		NewValidationError("phone", "bad"):    http.StatusBadRequest,
		NewAuthenticationError("no"):          http.StatusUnauthorized,
		NewAuthorizationError("no"):           http.StatusForbidden,
		NewNotFoundError("gone"):              http.StatusNotFound,
		NewConflictError("email", "dup"):      http.StatusConflict,
		NewInternalError(errors.New("boom")): http.StatusInternalServerError,
	}
	for err, status := range cases {
		ue, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, status, ue.Status(), err.Error())
	}
}

func TestAsError_Wrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", NewNotFoundError("Order not found"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestInternalError_HidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	ue, _ := AsError(NewInternalError(cause))
	assert.Equal(t, "internal error", ue.Message)
	assert.ErrorIs(t, ue, cause)
}
