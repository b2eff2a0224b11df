package client

import (
	"net/http"
	"testing"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestAPIError_UnwrapsToSentinel(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, common.ErrInvalidInput},
		{http.StatusUnauthorized, common.ErrorUnauthorized},
		{http.StatusForbidden, common.ErrUnauthenticated},
		{http.StatusNotFound, common.ErrorNotFound},
		{http.StatusConflict, common.ErrConflict},
		{http.StatusInternalServerError, common.ErrorInternal},
		{http.StatusBadGateway, common.ErrorInternal},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.ErrorIs(t, &APIError{StatusCode: tt.status}, tt.want)
		})
	}

	assert.Nil(t, (&APIError{StatusCode: http.StatusTeapot}).Unwrap())
}

func TestAPIError_Message(t *testing.T) {
	assert.Equal(t, "Todo 4 doesn't exist", (&APIError{StatusCode: 404, Message: "Todo 4 doesn't exist"}).Error())
	assert.Equal(t, "404 Not Found", (&APIError{StatusCode: 404}).Error())
}

func TestTokenExpired(t *testing.T) {
	assert.True(t, tokenExpired(&APIError{StatusCode: 401, Message: "token expired"}))
	assert.False(t, tokenExpired(&APIError{StatusCode: 401, Message: "token has been revoked"}))
	assert.False(t, tokenExpired(&APIError{StatusCode: 403, Message: "token expired"}))
	assert.False(t, tokenExpired(nil))
}
