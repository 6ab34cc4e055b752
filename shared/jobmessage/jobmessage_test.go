package jobmessage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestPublishing(t *testing.T) {
	msg := New("7f1c", "hello", "en", "pt", 3, fixedNow)

	pub, err := msg.Publishing()
	require.NoError(t, err)

	assert.Equal(t, amqp.Persistent, pub.DeliveryMode)
	assert.Equal(t, "7f1c", pub.MessageId)
	assert.Equal(t, "7f1c", pub.CorrelationId)
	assert.Equal(t, uint8(Priority), pub.Priority)
	assert.Equal(t, ContentType, pub.ContentType)
	if diff := cmp.Diff(amqp.Table{
		HeaderSourceLang: "en",
		HeaderTargetLang: "pt",
		HeaderRequestID:  "7f1c",
		HeaderRetries:    int32(0),
	}, pub.Headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}

	var wire map[string]any
	require.NoError(t, json.Unmarshal(pub.Body, &wire))
	assert.Equal(t, "translate_request", wire["eventType"])
	assert.Equal(t, "1.0", wire["version"])
	assert.Equal(t, "translate-api", wire["producer"])
	assert.Equal(t, float64(0), wire["retryCount"])
	assert.Equal(t, float64(3), wire["maxRetries"])

	decoded, err := Decode(pub.Body)
	require.NoError(t, err)
	if diff := cmp.Diff(msg, decoded); diff != "" {
		t.Errorf("decoded message mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := map[string]string{
		"not json":        `{"correlationId":`,
		"no request id":   `{"data":{"text":"hi","sourceLang":"en","targetLang":"pt"}}`,
		"no text":         `{"correlationId":"a","data":{"sourceLang":"en","targetLang":"pt"}}`,
		"no target lang":  `{"correlationId":"a","data":{"text":"hi","sourceLang":"en"}}`,
		"wrong type text": `{"correlationId":"a","data":{"text":42}}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(body))
			require.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestRetries(t *testing.T) {
	tests := []struct {
		name    string
		headers amqp.Table
		want    int
	}{
		{name: "missing header", headers: nil, want: 0},
		{name: "int32", headers: amqp.Table{HeaderRetries: int32(2)}, want: 2},
		{name: "int64", headers: amqp.Table{HeaderRetries: int64(3)}, want: 3},
		{name: "uint8", headers: amqp.Table{HeaderRetries: uint8(1)}, want: 1},
		{name: "float64", headers: amqp.Table{HeaderRetries: float64(2)}, want: 2},
		{name: "numeric string", headers: amqp.Table{HeaderRetries: "4"}, want: 4},
		{name: "garbage string", headers: amqp.Table{HeaderRetries: "many"}, want: 0},
		{name: "negative", headers: amqp.Table{HeaderRetries: int32(-5)}, want: 0},
		{name: "unsupported type", headers: amqp.Table{HeaderRetries: true}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retries(tt.headers))
		})
	}
}

func TestRedeliverAndDeadLetter(t *testing.T) {
	d := amqp.Delivery{
		Body:          []byte(`{"correlationId":"abc"}`),
		MessageId:     "abc",
		CorrelationId: "abc",
		Priority:      Priority,
		Headers: amqp.Table{
			HeaderRequestID: "abc",
			HeaderRetries:   int32(1),
		},
	}

	re := Redeliver(d, 2)
	assert.Equal(t, d.Body, re.Body)
	assert.Equal(t, "abc", re.MessageId)
	assert.Equal(t, amqp.Persistent, re.DeliveryMode)
	assert.Equal(t, ContentType, re.ContentType)
	assert.Equal(t, 2, Retries(re.Headers))
	assert.Equal(t, "abc", re.Headers[HeaderRequestID])
	assert.Equal(t, 1, Retries(d.Headers), "original headers must not be mutated")

	dl := DeadLetter(d, 3, "rate limit exceeded", fixedNow)
	assert.Equal(t, 3, Retries(dl.Headers))
	assert.Equal(t, "rate limit exceeded", dl.Headers[HeaderErrorMessage])
	assert.Equal(t, "2026-03-01T12:00:00Z", dl.Headers[HeaderFailedAt])
}
