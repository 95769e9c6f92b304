package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/IBM/sarama"

	"orderflow/internal/config"
	"orderflow/internal/model"
)

// StatusEventProducer publishes order status-change events to Kafka.
type StatusEventProducer struct {
	asyncProducer sarama.AsyncProducer
	topic         string
	log           *slog.Logger
	wg            sync.WaitGroup
	closeOnce     sync.Once
}

// NewStatusEventProducer builds the sarama async producer and starts the
// success and error channel drains.
func NewStatusEventProducer(cfg config.KafkaConfig, log *slog.Logger) (*StatusEventProducer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 5
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.ClientID = "orderflow-producer"

	asyncProducer, err := sarama.NewAsyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create sarama producer: %w", err)
	}

	p := &StatusEventProducer{
		asyncProducer: asyncProducer,
		topic:         cfg.Topic,
		log:           log.With("component", "kafka-producer"),
	}
	p.wg.Add(2)
	go p.handleSuccess()
	go p.handleErrors()
	return p, nil
}

func (p *StatusEventProducer) handleSuccess() {
	defer p.wg.Done()
	for msg := range p.asyncProducer.Successes() {
		key, _ := msg.Key.Encode()
		p.log.Info("status event delivered",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("key", string(key)))
	}
}

func (p *StatusEventProducer) handleErrors() {
	defer p.wg.Done()
	for err := range p.asyncProducer.Errors() {
		p.log.Error("status event delivery failed",
			slog.String("topic", err.Msg.Topic),
			slog.Any("error", err.Err))
	}
}

// Publish queues a status event keyed by order id.
func (p *StatusEventProducer) Publish(ctx context.Context, event model.StatusEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal status event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.OrderID),
		Value: sarama.ByteEncoder(data),
	}

	select {
	case p.asyncProducer.Input() <- msg:
		p.log.Debug("status event queued",
			slog.String("topic", p.topic),
			slog.String("order_id", event.OrderID),
			slog.String("new_status", event.NewStatus))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close shuts down the producer and waits for the channel drains.
func (p *StatusEventProducer) Close() {
	p.closeOnce.Do(func() {
		p.log.Info("closing kafka producer")
		p.asyncProducer.AsyncClose()
		p.wg.Wait()
		p.log.Info("kafka producer closed")
	})
}
