package dataprovider

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFoundError_Message(t *testing.T) {
	err := &NotFoundError{Resource: "thing", ID: "t-1"}
	assert.Contains(t, err.Error(), "thing")
	assert.Contains(t, err.Error(), "t-1")
}

func TestValidationError_JoinsAllFields(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{
		{Field: "name", Message: "is required"},
		{Field: "type", Message: "is required"},
	}}

	msg := err.Error()
	assert.Contains(t, msg, "name")
	assert.Contains(t, msg, "type")
}

func TestNetworkError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &NetworkError{Cause: cause}

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestErrorTaxonomy_MatchesWithAs(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(t *testing.T, err error)
	}{
		{
			name: "not found",
			err:  fmt.Errorf("get: %w", &NotFoundError{Resource: "connection", ID: "c-1"}),
			check: func(t *testing.T, err error) {
				var e *NotFoundError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "connection", e.Resource)
			},
		},
		{
			name: "validation",
			err:  fmt.Errorf("create: %w", &ValidationError{Fields: []FieldError{{Field: "type", Message: "is required"}}}),
			check: func(t *testing.T, err error) {
				var e *ValidationError
				require.ErrorAs(t, err, &e)
				assert.Len(t, e.Fields, 1)
			},
		},
		{
			name: "unauthorized",
			err:  fmt.Errorf("ping: %w", &UnauthorizedError{Reason: "token expired"}),
			check: func(t *testing.T, err error) {
				var e *UnauthorizedError
				require.ErrorAs(t, err, &e)
			},
		},
		{
			name: "rate limited",
			err:  fmt.Errorf("list: %w", &RateLimitError{RetryAfter: 30 * time.Second}),
			check: func(t *testing.T, err error) {
				var e *RateLimitError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, 30*time.Second, e.RetryAfter)
			},
		},
		{
			name: "server",
			err:  fmt.Errorf("search: %w", &ServerError{Status: 503, Message: "unavailable"}),
			check: func(t *testing.T, err error) {
				var e *ServerError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, 503, e.Status)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, tt.err)
		})
	}
}
