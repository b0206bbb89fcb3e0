package kafka_storage

import (
	"fmt"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/frostline/fc4tx/storage"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/stretchr/testify/require"
)

var (
	testTopic               = "fc4tx_test_topic"
	testConsumerGroup       = "fc4tx_test_consumer_group"
	testTimeout             = time.Second * 10
	testProducerCredentials = &plain.Mechanism{
		Username: "producer",
		Password: "producerpass",
	}
	testConsumerCredentials = &plain.Mechanism{
		Username: "consumer",
		Password: "consumerpass",
	}
)

// Requires a reachable broker, which is not part of the regular test
// run.
func getTestStorage(t *testing.T) storage.Storage {
	brokerEndpoint := os.Getenv("FC4TX_TEST_KAFKA_BROKER")
	if brokerEndpoint == "" {
		t.Skip("set FC4TX_TEST_KAFKA_BROKER to run kafka storage tests")
	}

	tlsConfig, err := GetTLSConfig(os.Getenv("FC4TX_TEST_KAFKA_TRUSTSTORE"))
	require.NoError(t, err)

	stg, err := NewKafkaStorage(brokerEndpoint, testTopic, testConsumerGroup,
		tlsConfig, testProducerCredentials, testConsumerCredentials, testTimeout)
	require.NoError(t, err)

	msgs, err := stg.GetMessages(0)
	require.NoError(t, err)

	msgIdsToIgnore := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		msgIdsToIgnore = append(msgIdsToIgnore, msg.ID)
	}

	require.NoError(t, stg.IgnoreMessages(msgIdsToIgnore, false))

	return stg
}

func TestKafkaStorage_SendGetMessages(t *testing.T) {
	req := require.New(t)
	stg := getTestStorage(t)
	defer stg.Close()

	N := 5
	msgs := make([]storage.Message, 0, N)
	for i := 0; i < N; i++ {
		data := make([]byte, 16)
		rand.Read(data)
		msgs = append(msgs, storage.Message{
			ID:         fmt.Sprintf("msg_%d", i),
			CeremonyID: "test_ceremony",
			Event:      "event_ceremony_commitment_received",
			Data:       data,
			SenderAddr: "test_sender_addr",
		})
	}

	req.NoError(stg.Send(msgs...))

	received, err := stg.GetMessages(0)
	req.NoError(err)
	req.Len(received, N)

	for i, msg := range received {
		req.Equal(msgs[i].CeremonyID, msg.CeremonyID)
		req.Equal(msgs[i].Event, msg.Event)
		req.Equal(msgs[i].Data, msg.Data)
	}
}

func TestGetTLSConfig_EmptyPath(t *testing.T) {
	config, err := GetTLSConfig("")
	require.NoError(t, err)
	require.NotNil(t, config)
	require.Nil(t, config.RootCAs)
}
