package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Record is a fetched message, along with enough of its raw form to commit
// it back through CommitRecords.
type Record struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Partition int32
	Offset    int64
	Timestamp time.Time

	raw *kgo.Record
}

// ConsumerConfig configures a consumer-group member.
type ConsumerConfig struct {
	Brokers          []string
	GroupID          string
	Topics           []string
	ClientID         string
	SessionTimeout   time.Duration
	RebalanceTimeout time.Duration
}

// Consumer polls a Kafka consumer group with manual offset commits, so a
// batch is only marked consumed after its handlers have run.
type Consumer struct {
	client *kgo.Client
}

func NewConsumer(ctx context.Context, cfg *ConsumerConfig) (*Consumer, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(cfg.Topics...),
		kgo.DisableAutoCommit(),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}
	if cfg.SessionTimeout > 0 {
		opts = append(opts, kgo.SessionTimeout(cfg.SessionTimeout))
	}
	if cfg.RebalanceTimeout > 0 {
		opts = append(opts, kgo.RebalanceTimeout(cfg.RebalanceTimeout))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping kafka brokers: %w", err)
	}

	return &Consumer{client: client}, nil
}

// Poll fetches the next batch of records, blocking until at least one
// record or fetch error is available, or ctx is cancelled.
func (c *Consumer) Poll(ctx context.Context) ([]*Record, error) {
	fetches := c.client.PollFetches(ctx)
	if fetches.IsClientClosed() {
		return nil, fmt.Errorf("kafka client closed")
	}

	var records []*Record
	if errs := fetches.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("poll fetches: %v", errs[0].Err)
	}

	fetches.EachRecord(func(r *kgo.Record) {
		headers := make(map[string]string, len(r.Headers))
		for _, h := range r.Headers {
			headers[h.Key] = string(h.Value)
		}
		records = append(records, &Record{
			Topic:     r.Topic,
			Key:       r.Key,
			Value:     r.Value,
			Headers:   headers,
			Partition: r.Partition,
			Offset:    r.Offset,
			Timestamp: r.Timestamp,
			raw:       r,
		})
	})

	return records, nil
}

// CommitRecords marks records as consumed. Call after their handlers have
// run successfully so a crash mid-batch redelivers rather than skips.
func (c *Consumer) CommitRecords(ctx context.Context, records []*Record) error {
	raw := make([]*kgo.Record, len(records))
	for i, r := range records {
		raw[i] = r.raw
	}
	return c.client.CommitRecords(ctx, raw...)
}

func (c *Consumer) Close() {
	c.client.Close()
}
