package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"dealer-portal/internal/infra"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Publisher writes events to a single topic. The routing key becomes the
// message key and a "pattern" header.
type Publisher struct {
	writer *kafka.Writer
	log    zerolog.Logger
}

var _ infra.Publisher = (*Publisher)(nil)

type message struct {
	Pattern string `json:"pattern"`
	Data    any    `json:"data"`
	ID      string `json:"id"`
}

func NewPublisher(brokers []string, topic string, log zerolog.Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka: topic is required")
	}
	l := log.With().Str("component", "kafka").Logger()

	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		Transport: &kafka.Transport{
			Dial: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			l.Error().Msgf(msg, args...)
		}),
	}
	return &Publisher{writer: w, log: l}, nil
}

func (p *Publisher) Publish(ctx context.Context, pattern string, data any) error {
	m := message{Pattern: pattern, Data: data, ID: uuid.NewString()}
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(pattern),
		Value: body,
		Headers: []kafka.Header{
			{Key: "pattern", Value: []byte(pattern)},
			{Key: "message_id", Value: []byte(m.ID)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	p.log.Debug().Str("pattern", pattern).Str("message_id", m.ID).Msg("message written")
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
