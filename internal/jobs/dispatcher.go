package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaDispatcher publishes job envelopes to the jobs topic. Records are
// keyed by process number so every refresh for one process lands on the
// same partition, in order.
type KafkaDispatcher struct {
	client *kgo.Client
	topic  string
}

func NewKafkaDispatcher(client *kgo.Client, topic string) *KafkaDispatcher {
	return &KafkaDispatcher{client: client, topic: topic}
}

func (d *KafkaDispatcher) DispatchRefresh(ctx context.Context, number string) error {
	return d.produce(ctx, number, Envelope{
		ID:     uuid.NewString(),
		Kind:   KindRefresh,
		Number: number,
	})
}

// DispatchDiscover enqueues a trailing-window discovery run.
func (d *KafkaDispatcher) DispatchDiscover(ctx context.Context, tier string, window time.Duration, maxResults, page int) error {
	return d.produce(ctx, tier, Envelope{
		ID:            uuid.NewString(),
		Kind:          KindDiscover,
		Tier:          tier,
		WindowMinutes: int(window / time.Minute),
		MaxResults:    maxResults,
		Page:          page,
	})
}

// DispatchSweep enqueues a staleness sweep capped at limit processes.
func (d *KafkaDispatcher) DispatchSweep(ctx context.Context, limit int) error {
	return d.produce(ctx, string(KindSweep), Envelope{
		ID:    uuid.NewString(),
		Kind:  KindSweep,
		Limit: limit,
	})
}

func (d *KafkaDispatcher) produce(ctx context.Context, key string, envelope Envelope) error {
	value, err := envelope.Encode()
	if err != nil {
		return err
	}
	record := &kgo.Record{
		Topic: d.topic,
		Key:   []byte(key),
		Value: value,
	}
	if err := d.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce %s job: %w", envelope.Kind, err)
	}
	return nil
}

// Memory collects envelopes in order; used by tests and single-binary runs
// that drain it inline.
type Memory struct {
	mu        sync.Mutex
	envelopes []Envelope
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) DispatchRefresh(_ context.Context, number string) error {
	m.append(Envelope{ID: uuid.NewString(), Kind: KindRefresh, Number: number})
	return nil
}

func (m *Memory) DispatchDiscover(_ context.Context, tier string, window time.Duration, maxResults, page int) error {
	m.append(Envelope{
		ID:            uuid.NewString(),
		Kind:          KindDiscover,
		Tier:          tier,
		WindowMinutes: int(window / time.Minute),
		MaxResults:    maxResults,
		Page:          page,
	})
	return nil
}

func (m *Memory) DispatchSweep(_ context.Context, limit int) error {
	m.append(Envelope{ID: uuid.NewString(), Kind: KindSweep, Limit: limit})
	return nil
}

func (m *Memory) append(envelope Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.envelopes = append(m.envelopes, envelope)
}

// Drain returns and clears everything dispatched so far.
func (m *Memory) Drain() []Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.envelopes
	m.envelopes = nil
	return out
}
