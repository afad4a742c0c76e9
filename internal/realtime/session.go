package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"go.uber.org/zap"

	"github.com/hirehub/server/internal/auth"
	"github.com/hirehub/server/internal/support"
	"github.com/hirehub/server/pkg/logger"
)

const (
	sendBuffer = 256

	destSend            = "support.send/"
	destHandoff         = "support.handoff/"
	destAccept          = "support.handoff.accept"
	destUserDisconnect  = "support.disconnect/"
	destAgentDisconnect = "support.agent.disconnect"
)

// session is one STOMP connection. Frames from the peer are handled in order
// on the read goroutine; all writes go through the writer goroutine.
type session struct {
	id   string
	conn Conn
	srv  *Server
	log  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	out  chan []byte
	done chan struct{}
	once sync.Once

	mu         sync.Mutex
	connected  bool
	principal  auth.Principal
	subs       map[string]string // subscription id -> topic
	userRooms  map[string]struct{}
	agentRooms map[string]struct{}
	expiry     *time.Timer
}

func newSession(id string, conn Conn, srv *Server) *session {
	ctx, cancel := context.WithCancel(context.Background())
	return &session{
		id:         id,
		conn:       conn,
		srv:        srv,
		log:        logger.L().With(zap.String("session_id", id)),
		ctx:        ctx,
		cancel:     cancel,
		out:        make(chan []byte, sendBuffer),
		done:       make(chan struct{}),
		principal:  auth.Anonymous{},
		subs:       map[string]string{},
		userRooms:  map[string]struct{}{},
		agentRooms: map[string]struct{}{},
	}
}

// serve blocks until the connection ends.
func (s *session) serve() {
	go s.writeLoop()
	s.readLoop()
	s.shutdown("connection closed")
}

func (s *session) readLoop() {
	for {
		b, err := s.conn.ReadMessage()
		if err != nil {
			s.log.Debug("read ended", zap.Error(err))
			return
		}
		r := frame.NewReader(bytes.NewReader(b))
		for {
			f, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				s.fail("malformed frame")
				return
			}
			if f == nil {
				continue // heart-beat
			}
			if !s.handle(f) {
				return
			}
		}
		select {
		case <-s.done:
			return
		default:
		}
	}
}

func (s *session) writeLoop() {
	var tick <-chan time.Time
	p, canPing := s.conn.(pinger)
	if canPing {
		t := time.NewTicker(pingPeriod)
		defer t.Stop()
		tick = t.C
	}
	for {
		select {
		case b := <-s.out:
			if err := s.conn.WriteMessage(b); err != nil {
				s.log.Debug("write failed", zap.Error(err))
				s.shutdown("write failed")
				_ = s.conn.Close()
				return
			}
		case <-tick:
			if err := p.Ping(); err != nil {
				s.shutdown("ping failed")
				_ = s.conn.Close()
				return
			}
		case <-s.done:
			for {
				select {
				case b := <-s.out:
					_ = s.conn.WriteMessage(b)
				default:
					_ = s.conn.Close()
					return
				}
			}
		}
	}
}

// handle processes one frame and reports whether reading should continue.
func (s *session) handle(f *frame.Frame) bool {
	switch f.Command {
	case frame.CONNECT, frame.STOMP:
		return s.onConnect(f)
	}

	s.mu.Lock()
	connected := s.connected
	s.mu.Unlock()
	if !connected {
		s.fail("not connected")
		return false
	}

	switch f.Command {
	case frame.SUBSCRIBE:
		s.onSubscribe(f)
	case frame.UNSUBSCRIBE:
		s.onUnsubscribe(f)
	case frame.SEND:
		s.onSend(f)
	case frame.DISCONNECT:
		s.receipt(f)
		s.shutdown("client disconnect")
		return false
	case frame.ACK, frame.NACK, frame.BEGIN, frame.COMMIT, frame.ABORT:
		s.receipt(f)
	default:
		s.fail("unsupported command " + f.Command)
		return false
	}
	return true
}

func (s *session) onConnect(f *frame.Frame) bool {
	s.mu.Lock()
	already := s.connected
	s.mu.Unlock()
	if already {
		s.fail("already connected")
		return false
	}

	var principal auth.Principal = auth.Anonymous{}
	hdr := f.Header.Get("Authorization")
	if hdr == "" {
		hdr = f.Header.Get("authorization")
	}
	if hdr != "" {
		tok, ok := auth.BearerToken(hdr)
		if !ok {
			s.fail("invalid token")
			return false
		}
		id, err := s.srv.tokens.Verify(tok)
		if err != nil {
			s.log.Debug("connect rejected", zap.Error(err))
			s.fail("invalid token")
			return false
		}
		principal = s.srv.resolve(s.ctx, id)
		s.scheduleExpiry(id.ExpiresAt)
	}

	s.mu.Lock()
	s.connected = true
	s.principal = principal
	s.mu.Unlock()

	if sub, ok := auth.SubjectOf(principal); ok {
		s.log.Info("stomp connected", zap.Int64("user_id", sub.UserID))
	} else {
		s.log.Info("stomp connected anonymously")
	}

	reply := frame.New(frame.CONNECTED,
		frame.Version, negotiateVersion(f.Header.Get(frame.AcceptVersion)),
		frame.HeartBeat, "0,0",
		frame.Server, "hirehub/1.0",
		frame.Session, s.id,
	)
	s.enqueue(reply)
	return true
}

func negotiateVersion(accept string) string {
	if accept == "" {
		return "1.0"
	}
	best := "1.0"
	for _, v := range strings.Split(accept, ",") {
		v = strings.TrimSpace(v)
		if v == "1.2" {
			return "1.2"
		}
		if v == "1.1" {
			best = "1.1"
		}
	}
	return best
}

func (s *session) scheduleExpiry(at time.Time) {
	d := time.Until(at)
	if d <= 0 {
		d = time.Millisecond
	}
	s.mu.Lock()
	s.expiry = time.AfterFunc(d, func() {
		s.log.Info("closing channel on token expiry")
		s.fail("token expired")
	})
	s.mu.Unlock()
}

func (s *session) onSubscribe(f *frame.Frame) {
	dest, id := f.Header.Get(frame.Destination), f.Header.Get(frame.Id)
	if dest == "" {
		s.errorFrame(f, "missing destination")
		return
	}
	if id == "" {
		id = dest
	}
	topic := support.CanonicalTopic(dest)
	s.mu.Lock()
	s.subs[id] = topic
	s.mu.Unlock()
	s.srv.broker.Subscribe(topic, id, s)
	s.receipt(f)
}

func (s *session) onUnsubscribe(f *frame.Frame) {
	id := f.Header.Get(frame.Id)
	s.mu.Lock()
	topic, ok := s.subs[id]
	delete(s.subs, id)
	s.mu.Unlock()
	if ok {
		s.srv.broker.Unsubscribe(topic, id, s)
	}
	s.receipt(f)
}

type roomBody struct {
	RoomID string              `json:"roomId"`
	UserID auth.OptionalUserID `json:"userId"`
}

func (s *session) onSend(f *frame.Frame) {
	dest := strings.TrimPrefix(strings.TrimPrefix(f.Header.Get(frame.Destination), "/"), "app/")
	log := s.log.With(zap.String("destination", dest))

	s.mu.Lock()
	principal := s.principal
	s.mu.Unlock()

	var err error
	switch {
	case strings.HasPrefix(dest, destSend):
		room := strings.TrimPrefix(dest, destSend)
		var body support.Frame
		if err = s.decode(f, &body); err == nil && s.validRoom(room) {
			_, err = s.srv.coord.Send(s.ctx, room, principal, body)
		}

	case strings.HasPrefix(dest, destHandoff):
		room := strings.TrimPrefix(dest, destHandoff)
		var body roomBody
		if err = s.decode(f, &body); err == nil && s.validRoom(room) {
			uid := bodyUserID(body, principal)
			if _, err = s.srv.coord.RequestHandoff(s.ctx, room, uid); err == nil {
				s.track(s.userRooms, room, true)
			}
		}

	case dest == destAccept:
		var body roomBody
		if err = s.decode(f, &body); err == nil && s.validRoom(body.RoomID) {
			if _, err = s.srv.coord.Accept(s.ctx, body.RoomID); err == nil {
				s.track(s.agentRooms, body.RoomID, true)
			}
		}

	case strings.HasPrefix(dest, destUserDisconnect):
		room := strings.TrimPrefix(dest, destUserDisconnect)
		if s.validRoom(room) {
			_, err = s.srv.coord.UserDisconnected(s.ctx, room)
			s.track(s.userRooms, room, false)
		}

	case dest == destAgentDisconnect:
		var body roomBody
		if err = s.decode(f, &body); err == nil && s.validRoom(body.RoomID) {
			_, err = s.srv.coord.AgentDisconnected(s.ctx, body.RoomID)
			s.track(s.agentRooms, body.RoomID, false)
		}

	default:
		log.Warn("dropping frame for unknown destination")
	}

	if err != nil && !errors.Is(err, support.ErrIgnored) {
		log.Warn("frame not processed", zap.Error(err))
	}
	s.receipt(f)
}

func (s *session) decode(f *frame.Frame, v any) error {
	if len(bytes.TrimSpace(f.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(f.Body, v); err != nil {
		return err
	}
	return nil
}

func (s *session) validRoom(room string) bool {
	if support.ValidRoomID(room) {
		return true
	}
	s.log.Warn("dropping frame with invalid room id", zap.String("room_id", room))
	return false
}

func bodyUserID(b roomBody, p auth.Principal) *int64 {
	if v := b.UserID.Ptr(); v != nil {
		return v
	}
	if sub, ok := auth.SubjectOf(p); ok {
		return &sub.UserID
	}
	return nil
}

func (s *session) track(set map[string]struct{}, room string, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		set[room] = struct{}{}
	} else {
		delete(set, room)
	}
}

// Deliver implements Sink.
func (s *session) Deliver(d Delivery) bool {
	f := frame.New(frame.MESSAGE,
		frame.Destination, d.Topic,
		frame.Subscription, d.SubscriptionID,
		frame.MessageId, d.MessageID,
		frame.ContentType, "application/json",
	)
	f.Body = d.Body
	b, err := encode(f)
	if err != nil {
		return true
	}
	select {
	case <-s.done:
		return false
	case s.out <- b:
		return true
	default:
		go s.shutdown("slow consumer")
		return false
	}
}

func (s *session) enqueue(f *frame.Frame) {
	b, err := encode(f)
	if err != nil {
		s.log.Error("encode frame failed", zap.Error(err))
		return
	}
	select {
	case s.out <- b:
	case <-s.done:
	default:
		go s.shutdown("slow consumer")
	}
}

func (s *session) receipt(f *frame.Frame) {
	if r, ok := f.Header.Contains(frame.Receipt); ok {
		s.enqueue(frame.New(frame.RECEIPT, frame.ReceiptId, r))
	}
}

func (s *session) errorFrame(in *frame.Frame, msg string) {
	f := frame.New(frame.ERROR, frame.Message, msg, frame.ContentType, "text/plain")
	if in != nil {
		if r, ok := in.Header.Contains(frame.Receipt); ok {
			f.Header.Add(frame.ReceiptId, r)
		}
	}
	f.Body = []byte(msg)
	s.enqueue(f)
}

// fail sends an ERROR frame and closes the channel.
func (s *session) fail(msg string) {
	s.errorFrame(nil, msg)
	s.shutdown(msg)
}

// shutdown releases subscriptions and reports implicit disconnects for the
// rooms this channel requested or accepted. Safe to call more than once.
func (s *session) shutdown(reason string) {
	s.once.Do(func() {
		s.mu.Lock()
		if s.expiry != nil {
			s.expiry.Stop()
		}
		userRooms := keys(s.userRooms)
		agentRooms := keys(s.agentRooms)
		s.mu.Unlock()

		close(s.done)
		s.srv.broker.UnsubscribeAll(s)
		s.srv.forget(s)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, room := range userRooms {
			_, _ = s.srv.coord.UserDisconnected(ctx, room)
		}
		for _, room := range agentRooms {
			_, _ = s.srv.coord.AgentDisconnected(ctx, room)
		}
		s.cancel()
		s.log.Info("stomp session closed", zap.String("reason", reason))
	})
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func encode(f *frame.Frame) ([]byte, error) {
	if len(f.Body) > 0 {
		f.Header.Set(frame.ContentLength, strconv.Itoa(len(f.Body)))
	}
	var buf bytes.Buffer
	if err := frame.NewWriter(&buf).Write(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
