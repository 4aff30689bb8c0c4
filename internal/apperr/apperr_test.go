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
		{ErrDuplicateEmail, http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrInvalidToken, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{NotFound("Request not found"), http.StatusNotFound},
		{ErrInvalidState, http.StatusBadRequest},
		{Upstream("db error", errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("assign: %w", NotFound("Garbage collector not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidState))

	wrapped := Wrap(ErrInvalidToken, errors.New("token is expired"))
	assert.True(t, errors.Is(wrapped, ErrInvalidToken))
	assert.Equal(t, "Token is not valid, authorization denied", PublicMessage(wrapped))
}

func TestPublicMessageHidesUpstreamDetail(t *testing.T) {
	err := Upstream("failed to fetch requests", errors.New("connection refused"))
	assert.Equal(t, "Server error", PublicMessage(err))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, "Server error", PublicMessage(errors.New("anything")))
}
