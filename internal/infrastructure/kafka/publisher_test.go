package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/key-verify-api/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_KeyedByUser(t *testing.T) {
	ev := domain.ValidationEvent{
		EventID:    "01HS0000000000000000000000",
		UserID:     "U1",
		Key:        "K1",
		VerifiedAt: "2024-03-09T03:11:12.345Z",
		OccurredAt: time.Date(2024, 3, 9, 3, 11, 12, 0, time.UTC),
	}

	msg, err := message(ev)
	require.NoError(t, err)

	assert.Equal(t, []byte("U1"), msg.Key)
	assert.Equal(t, ev.OccurredAt, msg.Time)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, domain.EventTypeUserValidated, string(msg.Headers[0].Value))

	var decoded domain.ValidationEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, ev, decoded)
}

func TestNewPublisher_ConfiguresWriter(t *testing.T) {
	p := NewPublisher([]string{"k1:9092", "k2:9092"}, "user-validations")
	defer p.Close()

	assert.Equal(t, "user-validations", p.writer.Topic)
	assert.IsType(t, &kafkago.Hash{}, p.writer.Balancer)
}
