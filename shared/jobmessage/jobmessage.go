// Package jobmessage defines the translation job message exchanged between
// the API and the worker over RabbitMQ, along with its AMQP headers.
package jobmessage

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventType   = "translate_request"
	Version     = "1.0"
	Producer    = "translate-api"
	ContentType = "application/json"
	Priority    = 5
)

// AMQP header names.
const (
	HeaderRetries      = "x-retries"
	HeaderSourceLang   = "source-lang"
	HeaderTargetLang   = "target-lang"
	HeaderRequestID    = "request-id"
	HeaderErrorMessage = "error-message"
	HeaderFailedAt     = "failed-at"
)

var ErrMalformed = errors.New("malformed job message")

type Data struct {
	Text       string `json:"text"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
}

// JobMessage is the body of a work-queue message. RetryCount is always zero on
// the wire; delivery attempts are tracked in the x-retries header.
type JobMessage struct {
	EventType     string    `json:"eventType"`
	Version       string    `json:"version"`
	Producer      string    `json:"producer"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlationId"`
	RetryCount    int       `json:"retryCount"`
	MaxRetries    int       `json:"maxRetries"`
	Data          Data      `json:"data"`
}

func New(requestID, text, sourceLang, targetLang string, maxRetries int, now time.Time) JobMessage {
	return JobMessage{
		EventType:     EventType,
		Version:       Version,
		Producer:      Producer,
		Timestamp:     now.UTC(),
		CorrelationID: requestID,
		MaxRetries:    maxRetries,
		Data: Data{
			Text:       text,
			SourceLang: sourceLang,
			TargetLang: targetLang,
		},
	}
}

// RequestID is the translation request id carried by the message.
func (m JobMessage) RequestID() string {
	return m.CorrelationID
}

// Decode parses and validates a message body. Every failure wraps ErrMalformed.
func Decode(body []byte) (JobMessage, error) {
	var m JobMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return JobMessage{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch {
	case m.CorrelationID == "":
		return JobMessage{}, fmt.Errorf("%w: missing correlationId", ErrMalformed)
	case m.Data.Text == "":
		return JobMessage{}, fmt.Errorf("%w: missing data.text", ErrMalformed)
	case m.Data.SourceLang == "" || m.Data.TargetLang == "":
		return JobMessage{}, fmt.Errorf("%w: missing language codes", ErrMalformed)
	}
	return m, nil
}

// Publishing encodes m as a persistent work-queue message with x-retries 0.
func (m JobMessage) Publishing() (amqp.Publishing, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to encode job message: %w", err)
	}
	return amqp.Publishing{
		ContentType:   ContentType,
		DeliveryMode:  amqp.Persistent,
		Priority:      Priority,
		MessageId:     m.CorrelationID,
		CorrelationId: m.CorrelationID,
		Timestamp:     m.Timestamp,
		Body:          body,
		Headers: amqp.Table{
			HeaderSourceLang: m.Data.SourceLang,
			HeaderTargetLang: m.Data.TargetLang,
			HeaderRequestID:  m.CorrelationID,
			HeaderRetries:    int32(0),
		},
	}, nil
}

// Retries reads the x-retries header. Missing, negative or unparsable values count as 0.
func Retries(headers amqp.Table) int {
	var n int64
	switch v := headers[HeaderRetries].(type) {
	case int:
		n = int64(v)
	case int8:
		n = int64(v)
	case int16:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case uint8:
		n = int64(v)
	case uint16:
		n = int64(v)
	case uint32:
		n = int64(v)
	case float32:
		n = int64(v)
	case float64:
		n = int64(v)
	case string:
		n, _ = strconv.ParseInt(v, 10, 64)
	}
	if n < 0 {
		return 0
	}
	return int(n)
}

// Redeliver copies d into a new persistent publishing with x-retries set to
// retries. Body, ids and the remaining headers are preserved.
func Redeliver(d amqp.Delivery, retries int) amqp.Publishing {
	headers := amqp.Table{}
	maps.Copy(headers, d.Headers)
	headers[HeaderRetries] = int32(retries)

	contentType := d.ContentType
	if contentType == "" {
		contentType = ContentType
	}
	return amqp.Publishing{
		ContentType:   contentType,
		DeliveryMode:  amqp.Persistent,
		Priority:      d.Priority,
		MessageId:     d.MessageId,
		CorrelationId: d.CorrelationId,
		Timestamp:     d.Timestamp,
		Body:          d.Body,
		Headers:       headers,
	}
}

// DeadLetter is Redeliver plus the failure reason and time.
func DeadLetter(d amqp.Delivery, retries int, reason string, failedAt time.Time) amqp.Publishing {
	p := Redeliver(d, retries)
	p.Headers[HeaderErrorMessage] = reason
	p.Headers[HeaderFailedAt] = failedAt.UTC().Format(time.RFC3339)
	return p
}
