package realtime

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/igm/sockjs-go/v3/sockjs"
	"go.uber.org/zap"

	"github.com/hirehub/server/internal/auth"
	"github.com/hirehub/server/internal/support"
	"github.com/hirehub/server/pkg/logger"
)

// Endpoint is where STOMP clients connect, natively or through SockJS.
const Endpoint = "/ws"

var subprotocols = []string{"v12.stomp", "v11.stomp", "v10.stomp"}

// Server accepts STOMP channels and routes their frames to the support coordinator.
type Server struct {
	broker   *Broker
	coord    *support.Coordinator
	tokens   *auth.TokenManager
	resolver auth.Resolver
	origins  map[string]struct{}
	upgrader websocket.Upgrader
	sockjs   http.Handler

	mu       sync.Mutex
	sessions map[*session]struct{}
	closing  bool
}

// NewServer builds a server. A nil resolver trusts token claims alone.
func NewServer(broker *Broker, coord *support.Coordinator, tokens *auth.TokenManager, resolver auth.Resolver, allowedOrigins []string) *Server {
	if resolver == nil {
		resolver = auth.ClaimsResolver{}
	}
	s := &Server{
		broker:   broker,
		coord:    coord,
		tokens:   tokens,
		resolver: resolver,
		origins:  map[string]struct{}{},
		sessions: map[*session]struct{}{},
	}
	for _, o := range allowedOrigins {
		s.origins[strings.TrimRight(o, "/")] = struct{}{}
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		Subprotocols:    subprotocols,
		CheckOrigin:     s.checkOrigin,
	}

	s.sockjs = sockjs.NewHandler(Endpoint, sockjs.DefaultOptions, s.serveSockJS)
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	_, ok := s.origins[strings.TrimRight(origin, "/")]
	return ok
}

// ServeWS handles the native WebSocket endpoint.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		logger.L().Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	s.run(newWSConn(ws, r))
}

// SockJS returns the SockJS fallback handler, to be mounted under Endpoint+"/".
func (s *Server) SockJS() http.Handler { return s.sockjs }

func (s *Server) serveSockJS(sess sockjs.Session) {
	s.run(&sockJSConn{sess: sess})
}

func (s *Server) run(c Conn) {
	sess := newSession(uuid.NewString(), c, s)
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		_ = c.Close()
		return
	}
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()

	if req := c.Request(); req != nil {
		sess.log.Debug("channel opened", zap.String("remote", req.RemoteAddr))
	}
	sess.serve()
}

func (s *Server) resolve(ctx context.Context, id auth.Identity) auth.Principal {
	return s.resolver.Principal(ctx, id)
}

func (s *Server) forget(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
}

// Sessions returns the number of open channels.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Shutdown closes every open channel and refuses new ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	open := make([]*session, 0, len(s.sessions))
	for sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for _, sess := range open {
			sess.fail("server shutting down")
		}
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
