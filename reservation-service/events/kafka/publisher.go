package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/arunvm123/busreservation/reservation-service/events"
	"github.com/segmentio/kafka-go"
)

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &KafkaPublisher{writer: writer}
}

// PublishReservationEvent writes the event keyed by reservation ID, so all
// transitions of one reservation land in the same partition in order
func (p *KafkaPublisher) PublishReservationEvent(ctx context.Context, event events.ReservationEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ReservationID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
