package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"github.com/Heinvv10/gaztime-sub000/internal/service/events"
)

// HandleFunc processes a single events.Event from Kafka.
type HandleFunc func(context.Context, events.Event) error

// Consumer wraps a Sarama consumer group and dispatches events to a handler.
type Consumer struct {
	group   sarama.ConsumerGroup
	topic   string
	handler HandleFunc
}

// NewConsumer creates a new Kafka consumer. Returns nil without error when
// the broker configuration is empty, so the worker can run without Kafka.
func NewConsumer(brokers []string, groupID, topic string, h HandleFunc) (*Consumer, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" || strings.TrimSpace(groupID) == "" {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:   group,
		topic:   topic,
		handler: h,
	}, nil
}

// Run starts the consumer loop until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	if c == nil {
		return nil
	}

	h := &groupHandler{c: c}

	for {
		if err := c.group.Consume(ctx, []string{c.topic}, h); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("kafka: consume error: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) Close() error {
	if c == nil {
		return nil
	}
	return c.group.Close()
}

type groupHandler struct{ c *Consumer }

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var dto EventDTO
		if err := json.Unmarshal(msg.Value, &dto); err != nil {
			log.Printf("kafka: bad json: %v", err)
			sess.MarkMessage(msg, "")
			continue
		}
		ev, err := ToDomain(dto)
		if err != nil {
			log.Printf("kafka: bad order_id %q: %v", dto.OrderID, err)
			sess.MarkMessage(msg, "")
			continue
		}

		if err := h.c.handler(sess.Context(), ev); err != nil {
			var perm PermanentError
			if errors.As(err, &perm) {
				log.Printf("kafka: dropping event: order_id=%s status=%s err=%v", dto.OrderID, dto.Status, err)
				sess.MarkMessage(msg, "")
				continue
			}
			log.Printf("kafka: handle failed,retry: order_id=%s status=%s err=%v", dto.OrderID, dto.Status, err)
			return err
		}

		sess.MarkMessage(msg, "")
	}
	return nil
}
