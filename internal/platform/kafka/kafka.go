// Package kafka wraps the franz-go client behind small producer/consumer
// types so modules depend on a narrow surface instead of the full client API.
//
// Delivery is at-least-once: handlers must be idempotent. Offsets are
// committed through marks, and only handled records are ever marked, so a
// commit can never pass a record whose handler failed.
package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"commune/internal/platform/config"
)

// Message is the transport-level unit handed to consumers.
type Message struct {
	Topic string
	Key   []byte
	Value []byte
}

// Handler processes one message. Returning an error rewinds the partition to
// the failed record so it is fetched and handled again.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// Producer publishes domain events.
type Producer struct {
	client *kgo.Client
}

// NewProducer connects a producing client. Returns nil if no brokers are
// configured (event publishing becomes a no-op at call sites that check).
func NewProducer(cfg config.KafkaConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &Producer{client: client}, nil
}

// Publish produces one record and waits for the broker ack.
func (p *Producer) Publish(ctx context.Context, topic string, key, value []byte) error {
	record := &kgo.Record{Topic: topic, Key: key, Value: value}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

func (p *Producer) Close() {
	p.client.Close()
}

// ConsumerGroup consumes the given topics and dispatches each record to the
// handler. Each handled record is marked for commit individually; a handler
// failure rewinds that partition to the failed record, so the failure point
// is both redelivered and never committed past.
type ConsumerGroup struct {
	client *kgo.Client
	logger *slog.Logger
}

// NewConsumerGroup connects a consuming client for the dispatcher group.
func NewConsumerGroup(cfg config.KafkaConfig, topics []string, logger *slog.Logger) (*ConsumerGroup, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(topics...),
		kgo.AutoCommitMarks(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return &ConsumerGroup{client: client, logger: logger}, nil
}

// Run polls until the context is canceled. When a handler fails, records in
// other partitions keep flowing; the failed partition is rewound to the
// failed record so the next poll delivers it again.
func (c *ConsumerGroup) Run(ctx context.Context, handler Handler) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
		if fetches.IsClientClosed() {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.Error("kafka fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		rewinds := make(map[string]map[int32]kgo.EpochOffset)
		fetches.EachPartition(func(p kgo.FetchTopicPartition) {
			for _, record := range p.Records {
				msg := &Message{Topic: record.Topic, Key: record.Key, Value: record.Value}
				if err := handler.Handle(ctx, msg); err != nil {
					c.logger.Error("kafka handler failed, rewinding partition",
						"topic", record.Topic,
						"partition", record.Partition,
						"offset", record.Offset,
						"error", err,
					)
					if rewinds[record.Topic] == nil {
						rewinds[record.Topic] = make(map[int32]kgo.EpochOffset)
					}
					rewinds[record.Topic][record.Partition] = kgo.EpochOffset{
						Epoch:  record.LeaderEpoch,
						Offset: record.Offset,
					}
					return
				}
				// Marked offsets are committed on the autocommit
				// interval and at group rebalance/close.
				c.client.MarkCommitRecords(record)
			}
		})
		if len(rewinds) > 0 {
			c.client.SetOffsets(rewinds)
			// Brief pause so a persistently failing handler does not
			// spin against the broker.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
		}
	}
}

func (c *ConsumerGroup) Close() {
	c.client.Close()
}

// EnsureTopics creates the given topics if they do not exist. Development
// convenience; production clusters provision topics out of band.
func EnsureTopics(ctx context.Context, cfg config.KafkaConfig, topics ...string) error {
	if len(cfg.Brokers) == 0 || cfg.SkipTopicEnsure {
		return nil
	}
	client, err := kgo.NewClient(kgo.SeedBrokers(cfg.Brokers...))
	if err != nil {
		return fmt.Errorf("create kafka admin client: %w", err)
	}
	defer client.Close()

	adm := kadm.NewClient(client)
	existing, err := adm.ListTopics(ctx)
	if err != nil {
		return fmt.Errorf("list topics: %w", err)
	}
	for _, topic := range topics {
		if existing.Has(topic) {
			continue
		}
		if _, err := adm.CreateTopic(ctx, 1, 1, nil, topic); err != nil {
			return fmt.Errorf("create topic %s: %w", topic, err)
		}
	}
	return nil
}
