// Package kafka publishes customer notifications to a Kafka topic. A
// separate messaging gateway consumes the topic and delivers the texts.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"

	kafkago "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Message is the payload written for every notification.
type Message struct {
	Phone string `json:"phone"`
	Text  string `json:"text"`
}

// Notifier implements ports.Notifier on top of a kafka-go Writer.
type Notifier struct {
	writer messageWriter
}

// NewNotifier builds a writer for topic on the given brokers. No connection
// is made until the first Send.
func NewNotifier(brokers []string, topic string) (*Notifier, error) {
	if len(brokers) == 0 {
		return nil, errs.NewValueIsRequiredError("kafka brokers")
	}
	if strings.TrimSpace(topic) == "" {
		return nil, errs.NewValueIsRequiredError("notifications topic")
	}

	return &Notifier{
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafkago.Hash{},
			RequiredAcks:           kafkago.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}, nil
}

// Send publishes one message keyed by phone so messages to the same
// customer keep their order.
func (n *Notifier) Send(ctx context.Context, phone, text string) error {
	payload, err := json.Marshal(Message{Phone: phone, Text: text})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err = n.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(phone),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}
