package support

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirehub/server/internal/auth"
	"github.com/hirehub/server/internal/models"
)

var ctx = context.Background()

func uid(v int64) auth.OptionalUserID { return auth.SomeUserID(v) }

func ptr(v int64) *int64 { return &v }

func TestHandoffLifecycle(t *testing.T) {
	chat := newFakeChat(&models.User{ID: 42, Email: "a@b.c", Name: "Kim", Nickname: "kimmy"})
	pub := &recorder{}
	c := NewCoordinator(NewRegistry(), chat, pub)
	user := auth.LocalUser{ID: 42, Email: "a@b.c", Role: models.RoleUser}

	ev, err := c.Send(ctx, "r1", user, Frame{Type: TypeText, Role: "USER", Text: "hello", UserID: uid(42)})
	require.NoError(t, err)
	assert.Equal(t, "kimmy", ev.Nickname)
	assert.Equal(t, int64(42), *ev.UserID)
	assert.Nil(t, ev.Durable)

	entry, err := c.RequestHandoff(ctx, "r1", ptr(42))
	require.NoError(t, err)
	assert.Equal(t, StateRequested, entry.State())

	entry, err = c.Accept(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, StateLive, entry.State())

	room := pub.on(RoomTopic("r1"))
	require.Len(t, room, 3)
	assert.Equal(t, TypeText, room[0].(RoomEvent).Type)
	assert.Equal(t, RoomEvent{Type: TypeHandoffRequested, RoomID: "r1"}, room[1])
	assert.Equal(t, RoomEvent{Type: TypeHandoffAccepted, Role: "SYS", Text: "agent connected", UserName: "Kim", UserNickname: "kimmy", RoomID: "r1"}, room[2])

	queue := pub.on(QueueTopic)
	require.Len(t, queue, 1)
	assert.Equal(t, QueueEvent{Event: TypeHandoffRequested, RoomID: "r1", UserName: "Kim", UserNickname: "kimmy"}, queue[0])

	assert.Equal(t, 1, chat.count("r1"))
}

func TestDuplicateAcceptIsIdempotentAndBroadcast(t *testing.T) {
	pub := &recorder{}
	reg := NewRegistry()
	c := NewCoordinator(reg, newFakeChat(), pub)
	_, err := c.RequestHandoff(ctx, "r1", nil)
	require.NoError(t, err)

	first, err := c.Accept(ctx, "r1")
	require.NoError(t, err)
	second, err := c.Accept(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	accepted := 0
	for _, p := range pub.on(RoomTopic("r1")) {
		if p.(RoomEvent).Type == TypeHandoffAccepted {
			accepted++
		}
	}
	assert.Equal(t, 2, accepted)
}

func TestAcceptWithoutRequestIsIgnored(t *testing.T) {
	pub := &recorder{}
	reg := NewRegistry()
	c := NewCoordinator(reg, newFakeChat(), pub)

	_, err := c.Accept(ctx, "r1")
	assert.ErrorIs(t, err, ErrIgnored)
	assert.False(t, reg.Get("r1").HandoffAccepted)
	assert.Empty(t, pub.on(RoomTopic("r1")))
}

func TestUnknownDefaultsToUser(t *testing.T) {
	pub := &recorder{}
	c := NewCoordinator(NewRegistry(), newFakeChat(), pub)
	_, err := c.RequestHandoff(ctx, "r9", ptr(999))
	require.NoError(t, err)
	assert.Equal(t, QueueEvent{Event: TypeHandoffRequested, RoomID: "r9", UserName: "user", UserNickname: "user"}, pub.on(QueueTopic)[0])
}

func TestDisconnects(t *testing.T) {
	chat := newFakeChat(&models.User{ID: 1, Name: "Kim", Nickname: "kimmy"})
	pub := &recorder{}
	reg := NewRegistry()
	c := NewCoordinator(reg, chat, pub)

	_, err := c.UserDisconnected(ctx, "r1")
	assert.ErrorIs(t, err, ErrIgnored, "nothing to leave in BOT")
	_, err = c.AgentDisconnected(ctx, "r1")
	assert.ErrorIs(t, err, ErrIgnored)

	_, err = c.RequestHandoff(ctx, "r1", ptr(1))
	require.NoError(t, err)
	_, err = c.Accept(ctx, "r1")
	require.NoError(t, err)

	e, err := c.UserDisconnected(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, StateClosed, e.State())
	assert.Equal(t, "Kim", e.UserName)

	queue := pub.on(QueueTopic)
	assert.Equal(t, QueueEvent{Event: TypeUserDisconnected, RoomID: "r1", UserName: "Kim", UserNickname: "kimmy"}, queue[len(queue)-1])
	room := pub.on(RoomTopic("r1"))
	assert.Equal(t, RoomEvent{Type: TypeUserDisconnected, UserName: "Kim", UserNickname: "kimmy", RoomID: "r1"}, room[len(room)-1])

	// CLOSED behaves as BOT for a new request
	_, err = c.RequestHandoff(ctx, "r1", ptr(1))
	require.NoError(t, err)
	_, err = c.Accept(ctx, "r1")
	require.NoError(t, err)
	queued := len(pub.on(QueueTopic))

	e, err = c.AgentDisconnected(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, StateClosed, e.State())
	assert.Equal(t, RoomEvent{Type: TypeAgentDisconnected, RoomID: "r1"}, pub.on(RoomTopic("r1"))[len(pub.on(RoomTopic("r1")))-1])
	assert.Len(t, pub.on(QueueTopic), queued, "agent leaving is room-only")
}

func TestRequestOnLiveRoomIgnored(t *testing.T) {
	reg := NewRegistry()
	c := NewCoordinator(reg, newFakeChat(), &recorder{})
	_, _ = c.RequestHandoff(ctx, "r1", nil)
	_, _ = c.Accept(ctx, "r1")

	_, err := c.RequestHandoff(ctx, "r1", nil)
	assert.ErrorIs(t, err, ErrIgnored)
	assert.Equal(t, StateLive, reg.Get("r1").State())
}

func TestSendDropsInvalidFrames(t *testing.T) {
	chat := newFakeChat()
	pub := &recorder{}
	c := NewCoordinator(NewRegistry(), chat, pub)

	for _, f := range []Frame{
		{Type: "IMAGE", Text: "x"},
		{Type: TypeText, Text: "   "},
		{Text: ""},
	} {
		_, err := c.Send(ctx, "r1", auth.Anonymous{}, f)
		assert.ErrorIs(t, err, ErrIgnored)
	}
	assert.Empty(t, pub.on(RoomTopic("r1")))
	assert.Zero(t, chat.count("r1"))
}

func TestSendResolvesIdentity(t *testing.T) {
	chat := newFakeChat(&models.User{ID: 5, Name: "Lee"})
	c := NewCoordinator(NewRegistry(), chat, &recorder{})

	ev, err := c.Send(ctx, "r1", auth.Anonymous{}, Frame{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, TypeText, ev.Type)
	assert.Equal(t, models.AnonymousNickname, ev.Nickname)
	assert.Nil(t, ev.UserID)
	assert.Equal(t, RoleUser, ev.Role)

	ev, err = c.Send(ctx, "r1", auth.LocalUser{ID: 5}, Frame{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Lee", ev.Nickname, "falls back to the channel principal")

	ev, err = c.Send(ctx, "r1", auth.LocalUser{ID: 5}, Frame{Text: "hi", Nickname: "override"})
	require.NoError(t, err)
	assert.Equal(t, "override", ev.Nickname)
}

func TestSendBroadcastsWhenStoreFails(t *testing.T) {
	chat := newFakeChat()
	chat.failNext = true
	pub := &recorder{}
	c := NewCoordinator(NewRegistry(), chat, pub)

	ev, err := c.Send(ctx, "r1", auth.Anonymous{}, Frame{Text: "hi"})
	require.NoError(t, err)
	require.NotNil(t, ev.Durable)
	assert.False(t, *ev.Durable)
	assert.Len(t, pub.on(RoomTopic("r1")), 1)
	require.Len(t, chat.retried, 1)
	assert.Equal(t, "hi", chat.retried[0].Content)
}

func TestPerRoomOrderUnderConcurrency(t *testing.T) {
	pub := &recorder{}
	chat := newFakeChat()
	c := NewCoordinator(NewRegistry(), chat, pub)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_, _ = c.Send(ctx, "r1", auth.Anonymous{}, Frame{Text: "m"})
			}
		}()
	}
	wg.Wait()

	// broadcast order matches storage order
	room := pub.on(RoomTopic("r1"))
	require.Len(t, room, 200)
	for i, p := range room {
		assert.Equal(t, int64(i+1), p.(RoomEvent).MessageID)
	}
}
