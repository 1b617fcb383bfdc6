package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("Value 'od' must be less than 'do'"), http.StatusBadRequest},
		{ErrDuplicateUsername, http.StatusBadRequest},
		{ErrDuplicateEmail, http.StatusBadRequest},
		{Conflict("dup"), http.StatusBadRequest},
		{NotFound("Range not found"), http.StatusNotFound},
		{ErrUnauthenticated, http.StatusUnauthorized},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrInvalidToken, http.StatusUnauthorized},
		{ErrExpiredToken, http.StatusUnauthorized},
		{Storage(errors.New("disk full")), http.StatusInternalServerError},
		{errors.New("unclassified"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), tc.err.Error())
	}
}

func TestIsMatchesKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("create nut: %w", NotFound("Range not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "Range not found", Message(err))
}

func TestStorageMessageHidesCause(t *testing.T) {
	err := Storage(errors.New("SQLITE_BUSY"))

	assert.True(t, errors.Is(err, ErrStorage))
	assert.Equal(t, "Internal server error", Message(err))
	assert.Contains(t, err.Error(), "SQLITE_BUSY")
}
