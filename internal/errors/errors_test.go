package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"missing message", ErrMessageNotFound, CodeNotFound, http.StatusNotFound},
		{"wrapped missing message", fmt.Errorf("get msg-9: %w", ErrMessageNotFound), CodeNotFound, http.StatusNotFound},
		{"bad status", ErrInvalidStatus, CodeInvalidInput, http.StatusBadRequest},
		{"empty update", ErrEmptyUpdate, CodeInvalidInput, http.StatusBadRequest},
		{"validation", Validation("name is required"), CodeInvalidInput, http.StatusBadRequest},
		{"bad token", ErrUnauthorized, CodeUnauthorized, http.StatusUnauthorized},
		{"throttled", ErrRateLimited, CodeRateLimited, http.StatusTooManyRequests},
		{"store down", fmt.Errorf("%w: %w", ErrStoreUnavailable, errors.New("i/o timeout")), CodeInternalError, http.StatusInternalServerError},
		{"anything else", errors.New("boom"), CodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, status := Classify(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, Code(tt.err))
		})
	}
}

func TestValidation(t *testing.T) {
	err := Validation("email must be a valid email address")

	assert.EqualError(t, err, "email must be a valid email address")
	assert.True(t, IsInvalidInput(err))
	assert.ErrorIs(t, err, ErrInvalidInput)

	var verr *ValidationError
	assert.ErrorAs(t, fmt.Errorf("submit: %w", err), &verr)
	assert.Equal(t, "email must be a valid email address", verr.Reason)
}

func TestInvalidStatusIsInvalidInput(t *testing.T) {
	assert.True(t, IsInvalidInput(ErrInvalidStatus))
	assert.True(t, IsInvalidInput(ErrEmptyUpdate))
	assert.False(t, IsInvalidInput(ErrMessageNotFound))
	assert.False(t, IsInvalidInput(nil))
}

func TestPublicMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation detail kept", Validation("message is required"), "message is required"},
		{"not found kept", ErrMessageNotFound, "message not found"},
		{"store cause hidden", fmt.Errorf("%w: %w", ErrStoreUnavailable, errors.New("dial tcp 10.0.0.5:5432")), "message store unavailable"},
		{"driver error hidden", errors.New("pq: password authentication failed"), "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicMessage(tt.err))
		})
	}
}
