package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/etodastandetka/bingo-recon-service/internal/domain"
	"github.com/jaevor/go-nanoid"
	"github.com/segmentio/kafka-go"
)

type DefaultKafkaPublisher struct {
	writer  *kafka.Writer
	topic   string
	eventID func() string
}

func NewDefaultKafkaPublisher(brokers []string, topic string) *DefaultKafkaPublisher {
	genID, err := nanoid.Standard(21)
	if err != nil {
		panic(err)
	}
	return &DefaultKafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Balancer: &kafka.LeastBytes{},
		},
		topic:   topic,
		eventID: genID,
	}
}

func (k *DefaultKafkaPublisher) Publish(topic string, msgs ...domain.Message) error {
	var km []kafka.Message
	for _, m := range msgs {
		km = append(km, kafka.Message{
			Key:   m.Key,
			Value: m.Value,
			Time:  time.Now(),
			Topic: topic,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return k.writer.WriteMessages(ctx, km...)
}

func (k *DefaultKafkaPublisher) PublishRecon(event domain.ReconEvent) error {
	if event.EventID == "" {
		event.EventID = k.eventID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	v, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return k.Publish(k.topic, domain.Message{Key: []byte(event.Kind), Value: v})
}
