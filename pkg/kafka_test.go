package pkg

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaPublisherPublish(t *testing.T) {
	tests := []struct {
		name    string
		fail    bool
		wantErr bool
	}{
		{name: "delivered", fail: false, wantErr: false},
		{name: "brokerFailure", fail: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := sarama.NewConfig()
			cfg.Producer.Return.Successes = true
			producer := mocks.NewSyncProducer(t, cfg)

			checker := func(msg *sarama.ProducerMessage) error {
				if msg.Topic != "roms-changes" {
					return errors.New("unexpected topic " + msg.Topic)
				}
				key, _ := msg.Key.Encode()
				if string(key) != "roms.changes" {
					return errors.New("unexpected key " + string(key))
				}
				return nil
			}
			if tt.fail {
				producer.ExpectSendMessageWithMessageCheckerFunctionAndFail(checker, sarama.ErrOutOfBrokers)
			} else {
				producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(checker)
			}

			p := newKafkaPublisher(producer, "")
			err := p.Publish(context.Background(), "roms.changes", []byte(`{"name":"orders:updated"}`))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			require.NoError(t, p.Close())
		})
	}
}

func TestKafkaPublisherCancelledContext(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	p := newKafkaPublisher(producer, "custom")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, "roms.changes", []byte("{}"))
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, p.Close())
}
