// Package broker публикует доменные события заказов в kafka.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Producer struct {
	writer *kafka.Writer
	l      *logrus.Entry
}

func NewProducer(brokers []string, topic string, l *logrus.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second, //nolint:mnd
		ReadTimeout:  10 * time.Second, //nolint:mnd
	}

	return &Producer{
		writer: writer,
		l:      l.WithField("component", "broker"),
	}
}

// Publish отправляет событие в топик. Ключ сообщения — id заказа, поэтому события
// одного заказа попадают в одну партицию и читаются по порядку.
func (p *Producer) Publish(ctx context.Context, event OrderEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.OrderID, 10)),
		Value: eventBytes,
		Time:  event.OccurredAt,
	}

	if writeErr := p.writer.WriteMessages(ctx, msg); writeErr != nil {
		return fmt.Errorf("write order event: %w", writeErr)
	}

	p.l.WithFields(logrus.Fields{
		"orderID": event.OrderID,
		"type":    event.Type,
	}).Debug("order event published")
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close() //nolint:wrapcheck
}

// NoopPublisher заглушка для конфигураций без kafka.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, _ OrderEvent) error {
	return nil
}
