package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	"github.com/SscSPs/money_tracker_ledger/internal/core/ports/publishers"
	"github.com/segmentio/kafka-go"
)

// Publisher writes ledger changes to one topic, keyed by owner so that an owner's
// changes stay ordered within a partition.
type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

var _ publishers.ChangePublisher = (*Publisher)(nil)

func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	p := &Publisher{logger: logger}
	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion:             p.onCompletion,
	}
	return p
}

func encodeChange(change domain.LedgerChange) (kafka.Message, error) {
	data, err := json.Marshal(change)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode ledger change: %w", err)
	}
	return kafka.Message{
		Key:   []byte(change.Event.OwnerID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "op", Value: []byte(change.Op)},
		},
		Time: change.CommittedAt,
	}, nil
}

// PublishChange enqueues the change. Delivery failures surface in the completion log only.
func (p *Publisher) PublishChange(ctx context.Context, change domain.LedgerChange) error {
	msg, err := encodeChange(change)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) onCompletion(messages []kafka.Message, err error) {
	if err != nil {
		p.logger.Error("Failed to deliver ledger changes", "count", len(messages), "error", err)
	}
}

// Close flushes pending messages.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
