package realtime

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/igm/sockjs-go/v3/sockjs"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// pongWait is the time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// pingPeriod must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize bounds one inbound frame.
	maxMessageSize = 64 * 1024
)

// Conn carries whole STOMP frames as text messages.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(b []byte) error
	Close() error
	Request() *http.Request
}

// pinger is implemented by transports that need keepalive pings from the writer.
type pinger interface {
	Ping() error
}

type wsConn struct {
	ws  *websocket.Conn
	req *http.Request
}

func newWSConn(ws *websocket.Conn, r *http.Request) *wsConn {
	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	return &wsConn{ws: ws, req: r}
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	for {
		mt, b, err := c.ws.ReadMessage()
		if err != nil {
			return nil, err
		}
		// any inbound traffic proves liveness
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		if mt == websocket.TextMessage || mt == websocket.BinaryMessage {
			return b, nil
		}
	}
}

func (c *wsConn) WriteMessage(b []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, b)
}

func (c *wsConn) Ping() error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}

func (c *wsConn) Close() error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.ws.Close()
}

func (c *wsConn) Request() *http.Request { return c.req }

type sockJSConn struct {
	sess sockjs.Session
}

func (c *sockJSConn) ReadMessage() ([]byte, error) {
	s, err := c.sess.Recv()
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func (c *sockJSConn) WriteMessage(b []byte) error {
	return c.sess.Send(string(b))
}

func (c *sockJSConn) Close() error {
	return c.sess.Close(1000, "bye")
}

func (c *sockJSConn) Request() *http.Request { return c.sess.Request() }
