package sender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	kafka "github.com/segmentio/kafka-go"

	"github.com/Sh00ty/stadium-map/internal/models"
)

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(addr string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(addr),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) PublishClosureEvents(ctx context.Context, events []models.ClosureEvent) (int, error) {
	msgs, err := encodeEvents(events)
	if err != nil {
		return 0, err
	}
	err = p.writer.WriteMessages(ctx, msgs...)
	if err == nil {
		return len(msgs), nil
	}

	// leading messages that were written are not resent
	var writeErrs kafka.WriteErrors
	if errors.As(err, &writeErrs) {
		done := 0
		for _, msgErr := range writeErrs {
			if msgErr != nil {
				break
			}
			done++
		}
		return done, err
	}
	return 0, err
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encodeEvents(events []models.ClosureEvent) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		value, err := json.Marshal(eventToValue(event))
		if err != nil {
			return nil, fmt.Errorf("failed to encode closure event %s: %w", event.Closure.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			// same closure always lands in the same partition
			Key:   []byte(event.Closure.ID),
			Value: value,
			Time:  event.At,
		})
	}
	return msgs, nil
}
