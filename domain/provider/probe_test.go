package provider

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sho-platform/sho-core/pkg/dataprovider"
)

func TestProbeError_Classification(t *testing.T) {
	tests := []struct {
		name       string
		cause      error
		wantStatus int
		wantReason string
	}{
		{
			name:       "unauthorized",
			cause:      &dataprovider.UnauthorizedError{Reason: "token expired"},
			wantStatus: 401,
			wantReason: "token expired",
		},
		{
			name:       "rate limited",
			cause:      &dataprovider.RateLimitError{RetryAfter: time.Minute},
			wantStatus: 429,
			wantReason: "rate limiting",
		},
		{
			name:       "server error",
			cause:      &dataprovider.ServerError{Status: 503, Message: "service unavailable"},
			wantStatus: 503,
			wantReason: "service unavailable",
		},
		{
			name:       "network error has no status",
			cause:      &dataprovider.NetworkError{Cause: errors.New("connection refused")},
			wantStatus: 0,
			wantReason: "unreachable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := probeError(KindSanity, 10*time.Millisecond, tt.cause)

			var tErr *ConnectionTestError
			if !errors.As(err, &tErr) {
				t.Fatalf("probeError() = %v, want ConnectionTestError", err)
			}
			if tErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", tErr.StatusCode, tt.wantStatus)
			}
			if tErr.Kind != KindSanity {
				t.Errorf("Kind = %v, want sanity", tErr.Kind)
			}
			if tErr.Elapsed != 10*time.Millisecond {
				t.Errorf("Elapsed = %v, want 10ms", tErr.Elapsed)
			}
			if tt.wantReason != "" && !strings.Contains(strings.ToLower(tErr.Reason), tt.wantReason) {
				t.Errorf("Reason = %q, want to mention %q", tErr.Reason, tt.wantReason)
			}
			if !errors.Is(err, tt.cause) {
				t.Error("cause not reachable via errors.Is")
			}
		})
	}
}
