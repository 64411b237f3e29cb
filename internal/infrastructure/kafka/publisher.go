package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/rcarvalho-pb/paywave-go/internal/domain/event"
)

type envelope struct {
	Type    event.Type      `json:"type"`
	Key     string          `json:"key"`
	Payload json.RawMessage `json:"payload"`
}

// Publisher writes settlement events to one topic keyed by reference, so
// every event for a reference lands on the same partition.
type Publisher struct {
	Producer sarama.SyncProducer
	Topic    string
}

func NewProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	cfg.Net.MaxOpenRequests = 1
	return cfg
}

func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return &Publisher{Producer: producer, Topic: topic}, nil
}

func (p *Publisher) Publish(_ context.Context, evt event.Event) error {
	payload, ok := evt.Payload.(json.RawMessage)
	if !ok {
		var err error
		payload, err = json.Marshal(evt.Payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", evt.Type, err)
		}
	}

	value, err := json.Marshal(envelope{Type: evt.Type, Key: evt.Key, Payload: payload})
	if err != nil {
		return err
	}

	_, _, err = p.Producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.Topic,
		Key:   sarama.StringEncoder(evt.Key),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(evt.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka publish %s: %w", evt.Type, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.Producer.Close()
}
