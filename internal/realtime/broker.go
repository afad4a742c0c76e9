package realtime

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hirehub/server/internal/support"
	"github.com/hirehub/server/pkg/logger"
)

// Delivery is one published message addressed to one subscription.
type Delivery struct {
	Topic          string
	SubscriptionID string
	MessageID      string
	Body           []byte
}

// Sink receives deliveries. Deliver must not block; returning false marks the
// sink as too slow and removes all of its subscriptions.
type Sink interface {
	Deliver(d Delivery) bool
}

type subscription struct {
	sink Sink
	id   string
}

// Broker is an in-process topic fan-out. Publish delivers to every current
// subscriber of the topic before returning, so deliveries on one topic keep
// the order of Publish calls.
type Broker struct {
	mu     sync.Mutex
	topics map[string]map[subscription]struct{}
}

func NewBroker() *Broker {
	return &Broker{topics: map[string]map[subscription]struct{}{}}
}

var _ support.Publisher = (*Broker)(nil)

// Subscribe registers sink under subscription id on topic.
func (b *Broker) Subscribe(topic, id string, sink Sink) {
	topic = support.CanonicalTopic(topic)
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.topics[topic]
	if !ok {
		subs = map[subscription]struct{}{}
		b.topics[topic] = subs
	}
	subs[subscription{sink: sink, id: id}] = struct{}{}
}

// Unsubscribe removes one subscription of sink.
func (b *Broker) Unsubscribe(topic, id string, sink Sink) {
	topic = support.CanonicalTopic(topic)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.remove(topic, subscription{sink: sink, id: id})
}

// UnsubscribeAll removes every subscription of sink.
func (b *Broker) UnsubscribeAll(sink Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dropSink(sink)
}

func (b *Broker) remove(topic string, s subscription) {
	subs := b.topics[topic]
	delete(subs, s)
	if len(subs) == 0 {
		delete(b.topics, topic)
	}
}

func (b *Broker) dropSink(sink Sink) {
	for topic, subs := range b.topics {
		for s := range subs {
			if s.sink == sink {
				b.remove(topic, s)
			}
		}
	}
}

// Subscribers returns the number of subscriptions on topic.
func (b *Broker) Subscribers(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics[support.CanonicalTopic(topic)])
}

// Publish marshals payload to JSON and fans it out.
func (b *Broker) Publish(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	topic = support.CanonicalTopic(topic)
	msgID := uuid.NewString()

	b.mu.Lock()
	defer b.mu.Unlock()
	var slow []Sink
	for s := range b.topics[topic] {
		ok := s.sink.Deliver(Delivery{Topic: topic, SubscriptionID: s.id, MessageID: msgID, Body: body})
		if !ok {
			slow = append(slow, s.sink)
		}
	}
	for _, sink := range slow {
		logger.L().Warn("evicting slow subscriber", zap.String("topic", topic))
		b.dropSink(sink)
	}
	return nil
}
