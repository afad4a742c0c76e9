package realtime

import (
	"encoding/json"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hirehub/server/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Set(zap.NewNop())
	os.Exit(m.Run())
}

type sinkRecorder struct {
	mu   sync.Mutex
	got  []Delivery
	full bool
}

func (s *sinkRecorder) Deliver(d Delivery) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		return false
	}
	s.got = append(s.got, d)
	return true
}

func (s *sinkRecorder) bodies() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.got))
	for i, d := range s.got {
		out[i] = string(d.Body)
	}
	return out
}

func TestBrokerPublishOrderAndAlias(t *testing.T) {
	b := NewBroker()
	s := &sinkRecorder{}
	b.Subscribe("/topic/support.queue", "sub-0", s)
	assert.Equal(t, 1, b.Subscribers("/topic/support/queue"))

	for i := 0; i < 5; i++ {
		require.NoError(t, b.Publish("/topic/support/queue", map[string]int{"n": i}))
	}
	got := s.bodies()
	require.Len(t, got, 5)
	for i, body := range got {
		var v map[string]int
		require.NoError(t, json.Unmarshal([]byte(body), &v))
		assert.Equal(t, i, v["n"])
	}
	assert.Equal(t, "sub-0", s.got[0].SubscriptionID)
	assert.Equal(t, "/topic/support/queue", s.got[0].Topic)
}

func TestBrokerTopicIsolation(t *testing.T) {
	b := NewBroker()
	a, c := &sinkRecorder{}, &sinkRecorder{}
	b.Subscribe("/topic/rooms/r1", "1", a)
	b.Subscribe("/topic/rooms/r2", "1", c)

	require.NoError(t, b.Publish("/topic/rooms/r1", "x"))
	assert.Len(t, a.bodies(), 1)
	assert.Empty(t, c.bodies())
}

func TestBrokerEvictsSlowSink(t *testing.T) {
	b := NewBroker()
	slow := &sinkRecorder{full: true}
	ok := &sinkRecorder{}
	b.Subscribe("/topic/rooms/r1", "a", slow)
	b.Subscribe("/topic/rooms/r2", "b", slow)
	b.Subscribe("/topic/rooms/r1", "c", ok)

	require.NoError(t, b.Publish("/topic/rooms/r1", "x"))
	assert.Equal(t, 1, b.Subscribers("/topic/rooms/r1"))
	assert.Equal(t, 0, b.Subscribers("/topic/rooms/r2"))
	assert.Len(t, ok.bodies(), 1)
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := NewBroker()
	s := &sinkRecorder{}
	b.Subscribe("rooms/r1", "a", s)
	b.Unsubscribe("/topic/rooms/r1", "a", s)
	require.NoError(t, b.Publish("/topic/rooms/r1", "x"))
	assert.Empty(t, s.bodies())
	assert.Equal(t, 0, b.Subscribers("/topic/rooms/r1"))
}

func TestBrokerPublishRejectsUnmarshalable(t *testing.T) {
	b := NewBroker()
	assert.Error(t, b.Publish("/topic/rooms/r1", make(chan int)))
}
