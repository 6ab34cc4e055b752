package handler

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/translate-queue/internal/api/storage"
)

func TestCursorRoundTrip(t *testing.T) {
	in := &storage.Cursor{
		CreatedAt: time.Date(2026, 2, 3, 4, 5, 6, 789000, time.UTC),
		RequestID: "3f2b8c1e-5d4a-4c6b-9e7f-1a2b3c4d5e6f",
	}

	out, err := DecodeCursor(EncodeCursor(in))
	require.NoError(t, err)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	assert.Equal(t, in.RequestID, out.RequestID)
}

func TestDecodeCursor(t *testing.T) {
	enc := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }

	tests := []struct {
		name    string
		raw     string
		wantNil bool
		wantErr bool
	}{
		{name: "empty means first page", raw: "", wantNil: true},
		{name: "not base64", raw: "%%%", wantErr: true},
		{name: "no separator", raw: enc("12345"), wantErr: true},
		{name: "bad timestamp", raw: enc("yesterday|abc"), wantErr: true},
		{name: "missing id", raw: enc("12345|"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeCursor(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, got)
			}
		})
	}

	assert.Empty(t, EncodeCursor(nil))
}
