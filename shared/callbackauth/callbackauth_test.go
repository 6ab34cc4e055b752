package callbackauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T, secret string, now time.Time) *Signer {
	t.Helper()
	s, err := NewSigner(secret, time.Minute)
	require.NoError(t, err)
	s.now = func() time.Time { return now }
	return s
}

func TestNewSigner_RequiresSecret(t *testing.T) {
	_, err := NewSigner("", time.Minute)
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestSigner_RoundTrip(t *testing.T) {
	now := time.Now()
	s := newTestSigner(t, "shared-secret", now)

	token, err := s.Sign("req-1")
	require.NoError(t, err)
	assert.NoError(t, s.Verify(token, "req-1"))
}

func TestSigner_Verify(t *testing.T) {
	now := time.Now()
	signer := newTestSigner(t, "shared-secret", now)
	token, err := signer.Sign("req-1")
	require.NoError(t, err)

	tests := []struct {
		name      string
		verifier  *Signer
		token     string
		requestID string
		wantErr   error
	}{
		{
			name:      "request id is not a credential",
			verifier:  signer,
			token:     "req-1",
			requestID: "req-1",
			wantErr:   ErrInvalidToken,
		},
		{
			name:      "token for another request",
			verifier:  signer,
			token:     token,
			requestID: "req-2",
			wantErr:   ErrSubjectMismatch,
		},
		{
			name:      "different secret",
			verifier:  newTestSigner(t, "other-secret", now),
			token:     token,
			requestID: "req-1",
			wantErr:   ErrInvalidToken,
		},
		{
			name:      "expired",
			verifier:  newTestSigner(t, "shared-secret", now.Add(2*time.Minute)),
			token:     token,
			requestID: "req-1",
			wantErr:   ErrTokenExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.verifier.Verify(tt.token, tt.requestID)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
