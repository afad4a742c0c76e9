package support

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hirehub/server/internal/auth"
	"github.com/hirehub/server/internal/models"
	"github.com/hirehub/server/internal/services"
	"github.com/hirehub/server/pkg/logger"
	"github.com/hirehub/server/pkg/utils"
)

// ErrIgnored is returned for frames that are dropped without changing state.
var ErrIgnored = errors.New("support: frame ignored")

// Publisher fans a payload out to every subscriber of a topic, in call order.
type Publisher interface {
	Publish(topic string, payload any) error
}

// Coordinator runs the per-room handoff state machine. Work for one room
// (transition, chat log append, broadcast) runs under that room's lock.
type Coordinator struct {
	rooms Rooms
	chat  services.ChatService
	pub   Publisher
	now   func() time.Time
}

func NewCoordinator(rooms Rooms, chat services.ChatService, pub Publisher) *Coordinator {
	return &Coordinator{rooms: rooms, chat: chat, pub: pub, now: time.Now}
}

// Rooms exposes the registry for read-only views such as the pending list.
func (c *Coordinator) Rooms() Rooms { return c.rooms }

// Send stores a TEXT frame and rebroadcasts it to the room with the sender's
// resolved identity. sender is the channel or request principal and supplies
// the user id when the frame carries none.
func (c *Coordinator) Send(ctx context.Context, roomID string, sender auth.Principal, f Frame) (RoomEvent, error) {
	log := logger.L().With(zap.String("room_id", roomID))
	if f.Type == "" {
		f.Type = TypeText
	}
	if f.Type != TypeText {
		log.Warn("dropping frame with unsupported type", zap.String("type", f.Type))
		return RoomEvent{}, ErrIgnored
	}
	if utils.IsBlank(f.Text) || utils.IsBlank(roomID) {
		log.Warn("dropping blank text frame")
		return RoomEvent{}, ErrIgnored
	}

	uid := f.userID()
	if uid == nil {
		if s, ok := auth.SubjectOf(sender); ok {
			uid = &s.UserID
		}
	}
	var user *models.User
	if uid != nil {
		u, err := c.chat.LookupUser(ctx, *uid)
		if err != nil {
			log.Warn("sender lookup failed", zap.Int64("user_id", *uid), zap.Error(err))
		}
		user = u
	}
	nickname := utils.FirstNonBlank(f.Nickname, user.DisplayNickname())
	role := utils.FirstNonBlank(f.Role, RoleUser)

	var ev RoomEvent
	c.rooms.With(roomID, func(*Entry) {
		in := services.AppendInput{SessionID: roomID, UserID: uid, Content: f.Text, Role: role, At: c.now()}
		ev = RoomEvent{Type: TypeText, Role: role, Text: f.Text, UserID: uid, Nickname: nickname, RoomID: roomID}

		msg, err := c.chat.Append(ctx, in)
		if err != nil {
			log.Error("chat append failed, broadcasting as not durable", zap.Error(err))
			durable := false
			ev.Durable = &durable
			if qerr := c.chat.EnqueueRetry(ctx, in); qerr != nil {
				log.Error("chat append retry not scheduled", zap.Error(qerr))
			}
		} else {
			ev.MessageID = msg.ID
		}
		c.publish(RoomTopic(roomID), ev)
	})
	return ev, nil
}

// RequestHandoff moves a room from BOT or CLOSED to REQUESTED and notifies agents.
// Repeating the request while REQUESTED re-notifies; a LIVE room ignores it.
func (c *Coordinator) RequestHandoff(ctx context.Context, roomID string, userID *int64) (Entry, error) {
	name, nickname := defaultDisplay, defaultDisplay
	if userID != nil {
		u, err := c.chat.LookupUser(ctx, *userID)
		if err != nil {
			logger.L().Warn("handoff user lookup failed", zap.String("room_id", roomID), zap.Error(err))
		}
		if u != nil {
			name = utils.FirstNonBlank(u.Name, defaultDisplay)
			nickname = utils.FirstNonBlank(u.Nickname, defaultDisplay)
		}
	}

	var out Entry
	var err error
	c.rooms.With(roomID, func(e *Entry) {
		if e.State() == StateLive {
			logger.L().Warn("handoff requested on live room", zap.String("room_id", roomID))
			out, err = *e, ErrIgnored
			return
		}
		e.request(name, nickname)
		out = *e
		c.publish(QueueTopic, QueueEvent{Event: TypeHandoffRequested, RoomID: roomID, UserName: name, UserNickname: nickname})
		c.publish(RoomTopic(roomID), RoomEvent{Type: TypeHandoffRequested, RoomID: roomID})
	})
	if err == nil {
		logger.L().Info("handoff requested", zap.String("room_id", roomID))
	}
	return out, err
}

// Accept moves a REQUESTED room to LIVE. A repeated accept is idempotent and
// still broadcast. Accepting a room nobody asked about is ignored.
func (c *Coordinator) Accept(ctx context.Context, roomID string) (Entry, error) {
	var out Entry
	var err error
	c.rooms.With(roomID, func(e *Entry) {
		if !e.HandoffRequested {
			logger.L().Warn("accept without pending handoff", zap.String("room_id", roomID))
			out, err = *e, ErrIgnored
			return
		}
		e.accept()
		out = *e
		c.publish(RoomTopic(roomID), RoomEvent{
			Type:         TypeHandoffAccepted,
			Role:         RoleSystem,
			Text:         AcceptedText,
			UserName:     e.UserName,
			UserNickname: e.UserNickname,
			RoomID:       roomID,
		})
	})
	if err == nil {
		logger.L().Info("handoff accepted", zap.String("room_id", roomID))
	}
	return out, err
}

// UserDisconnected ends a requested or live handoff on behalf of the user.
func (c *Coordinator) UserDisconnected(ctx context.Context, roomID string) (Entry, error) {
	var out Entry
	var err error
	c.rooms.With(roomID, func(e *Entry) {
		if !e.HandoffRequested {
			out, err = *e, ErrIgnored
			return
		}
		e.reset()
		out = *e
		c.publish(RoomTopic(roomID), RoomEvent{
			Type:         TypeUserDisconnected,
			UserName:     e.UserName,
			UserNickname: e.UserNickname,
			RoomID:       roomID,
		})
		c.publish(QueueTopic, QueueEvent{Event: TypeUserDisconnected, RoomID: roomID, UserName: e.UserName, UserNickname: e.UserNickname})
	})
	if err == nil {
		logger.L().Info("user left live support", zap.String("room_id", roomID))
	}
	return out, err
}

// AgentDisconnected ends a live handoff on behalf of the agent.
func (c *Coordinator) AgentDisconnected(ctx context.Context, roomID string) (Entry, error) {
	var out Entry
	var err error
	c.rooms.With(roomID, func(e *Entry) {
		if e.State() != StateLive {
			out, err = *e, ErrIgnored
			return
		}
		e.reset()
		out = *e
		c.publish(RoomTopic(roomID), RoomEvent{Type: TypeAgentDisconnected, RoomID: roomID})
	})
	if err == nil {
		logger.L().Info("agent left live support", zap.String("room_id", roomID))
	}
	return out, err
}

func (c *Coordinator) publish(topic string, payload any) {
	if err := c.pub.Publish(topic, payload); err != nil {
		logger.L().Error("publish failed", zap.String("topic", topic), zap.Error(err))
	}
}

// ValidRoomID rejects ids that cannot form a topic segment.
func ValidRoomID(id string) bool {
	return !utils.IsBlank(id) && !strings.ContainsAny(id, "/ \t\r\n") && len(id) <= 255
}
