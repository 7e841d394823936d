package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/arunvm123/busreservation/notification-service/config"
	"github.com/arunvm123/busreservation/notification-service/model"
	"github.com/segmentio/kafka-go"
)

var messagesProcessed int64

func main() {
	fmt.Println("Starting Notification Service Worker")

	// Load configuration
	cfg, err := config.Initialise("config.yaml", false)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup Kafka consumer
	consumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.ReservationTopic,
		GroupID: cfg.Kafka.ConsumerGroup,
	})
	defer consumer.Close()

	// Graceful shutdown context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("Received shutdown signal, stopping worker...")
		cancel()
	}()

	// Start processing reservation events
	fmt.Println("Notification processor worker started")
	if err := processEvents(ctx, consumer); err != nil && err != context.Canceled {
		log.Fatal("Worker error:", err)
	}

	fmt.Println("Worker stopped gracefully")
}

func processEvents(ctx context.Context, consumer *kafka.Reader) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			// Read message from Kafka
			msg, err := consumer.ReadMessage(ctx)
			if err != nil {
				log.Printf("Error reading message: %v", err)
				continue
			}

			// Process the reservation event
			if err := processEvent(msg.Value); err != nil {
				log.Printf("Error processing event: %v", err)
			}

			// Increment counter
			atomic.AddInt64(&messagesProcessed, 1)
		}
	}
}

func processEvent(payload []byte) error {
	var event model.ReservationEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal reservation event: %w", err)
	}

	log.Printf("Processing event: %s for reservation %s", event.EventType, event.ReservationID)

	// Generate notification based on event type
	var notification *model.Notification
	switch event.EventType {
	case "reservation.booked":
		notification = event.GenerateBookingConfirmation()
	case "reservation.cancelled":
		notification = event.GenerateCancellationConfirmation()
	default:
		log.Printf("Unknown event type: %s", event.EventType)
		return nil
	}

	// Mock delivery (just log to console)
	if err := sendNotificationMock(notification); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	log.Printf("Successfully sent %s notification to %s for reservation %s",
		event.EventType, notification.Recipient, event.ReservationID)

	return nil
}

// sendNotificationMock simulates delivery by logging to console
func sendNotificationMock(notification *model.Notification) error {
	log.Printf("NOTIFICATION SENT:")
	log.Printf("   To: %s", notification.Recipient)
	log.Printf("   Subject: %s", notification.Subject)
	log.Printf("   Body:\n%s", notification.Body)

	return nil
}
