package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher はイベントをトピックへ書く（cmd/notifierが読む）
type KafkaPublisher struct {
	w messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.Key()),
		Value: data,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(ev.Kind)},
			{Key: "event_id", Value: []byte(ev.ID)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer はトピックを読んでHandlerに渡す
// 送信失敗もcommitする（メールはベストエフォート）
type KafkaConsumer struct {
	r       messageReader
	handler Handler
	logger  *slog.Logger
}

func NewKafkaConsumer(brokers []string, topic string, groupID string, handler Handler, logger *slog.Logger) *KafkaConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
	return &KafkaConsumer{r: r, handler: handler, logger: logger}
}

// Run はctxがキャンセルされるまで読み続ける
func (c *KafkaConsumer) Run(ctx context.Context) error {
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("kafka: fetch failed: %w", err)
		}

		c.handle(ctx, m)

		if err := c.r.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka: commit failed: %w", err)
		}
	}
}

func (c *KafkaConsumer) handle(ctx context.Context, m kafka.Message) {
	l := c.logger.With("partition", m.Partition, "offset", m.Offset)

	ev, err := DecodeEvent(m.Value)
	if err != nil {
		l.Error("skip malformed message", "error", err)
		return
	}

	hctx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	err = c.handler.Handle(hctx, ev)
	switch {
	case err == nil:
		l.Info("notification sent", "event_id", ev.ID, "kind", ev.Kind, "order_id", ev.OrderID)
	case errors.Is(err, ErrUnknownStatus):
		l.Warn("notification skipped", "event_id", ev.ID, "status", ev.Status, "error", err)
	default:
		l.Error("notification failed", "event_id", ev.ID, "kind", ev.Kind, "error", err)
	}
}

func (c *KafkaConsumer) Close() error {
	return c.r.Close()
}
