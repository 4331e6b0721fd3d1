package kafka_test

import (
	"testing"

	"travelo/infras/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type approvalRequested struct {
	BookingID string `json:"booking_id"`
	Amount    string `json:"amount"`
}

func TestMessageRoundTrip(t *testing.T) {
	msg := kafka.Message{
		Key:   "booking-1",
		Type:  "booking.approval_requested",
		Value: approvalRequested{BookingID: "booking-1", Amount: "2500.00"},
	}

	raw, err := msg.ToKafkaMessage()
	require.NoError(t, err)
	assert.Equal(t, []byte("booking-1"), raw.Key)
	assert.JSONEq(t, `{"booking_id":"booking-1","amount":"2500.00"}`, string(raw.Value))

	decoded, err := kafka.DecodeKafkaMessage[approvalRequested](raw)
	require.NoError(t, err)
	assert.Equal(t, msg, decoded)
}

func TestToKafkaMessage_Unmarshalable(t *testing.T) {
	msg := kafka.Message{Key: "k", Value: make(chan int)}

	_, err := msg.ToKafkaMessage()
	assert.Error(t, err)
}
