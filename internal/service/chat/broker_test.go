package chat

import (
	"testing"
	"time"

	"class_chat_server/internal/config"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastRoundTripDeliversLocally(t *testing.T) {
	r := NewRegistry()
	member := admit(t, r, "u1")
	require.True(t, r.Join(member, "C1"))

	payload, err := encodeBroadcast("C1", []byte(`{"event":"messageReceived"}`))
	require.NoError(t, err)

	classId, n, err := deliverBroadcast(r, payload)
	require.NoError(t, err)
	assert.Equal(t, "C1", classId)
	assert.Equal(t, 1, n)
	assert.JSONEq(t, `{"event":"messageReceived"}`, string(recv(t, member)))
}

func TestDeliverBroadcastRejectsMalformed(t *testing.T) {
	r := NewRegistry()
	for _, payload := range []string{`not json`, `{"frame":{}}`, `{"classId":"C1"}`} {
		_, _, err := deliverBroadcast(r, []byte(payload))
		assert.Error(t, err, payload)
	}
}

func TestNewKafkaClient_Config(t *testing.T) {
	client := NewKafkaClient(config.KafkaConfig{
		HostPort:  "127.0.0.1:1",
		ChatTopic: "class_chat",
		Timeout:   2,
	}, "chat-test")
	defer client.Close()

	assert.Equal(t, "class_chat", client.Producer.Topic)
	assert.IsType(t, &kafka.Hash{}, client.Producer.Balancer)
	assert.Equal(t, 2*time.Second, client.Producer.WriteTimeout)
	assert.Equal(t, "chat-test", client.Consumer.Config().GroupID)
	assert.Equal(t, kafka.LastOffset, client.Consumer.Config().StartOffset)
}
