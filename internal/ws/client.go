package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	pongWait     = time.Minute
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
	sendBuffer   = 256
)

// Handler receives decoded envelopes and connection lifecycle events.
type Handler interface {
	HandleMessage(c *Client, env Envelope)
	HandleDisconnect(c *Client)
}

// Client wraps one websocket connection with an id, a buffered
// outbound queue and a chat rate limiter. ReadPump and WritePump are
// the only goroutines touching the underlying connection.
type Client struct {
	id      string
	conn    *websocket.Conn
	handler Handler
	send    chan Envelope
	log     zerolog.Logger

	chatLimiter *rate.Limiter

	closeOnce sync.Once
	closed    chan struct{}
}

func NewClient(conn *websocket.Conn, handler Handler, log zerolog.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:          id,
		conn:        conn,
		handler:     handler,
		send:        make(chan Envelope, sendBuffer),
		log:         log.With().Str("conn", id).Logger(),
		chatLimiter: rate.NewLimiter(2, 5),
		closed:      make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Send queues an envelope for delivery. A connection that cannot keep
// up has its messages dropped rather than stalling the sender.
func (c *Client) Send(env Envelope) {
	select {
	case c.send <- env:
	case <-c.closed:
	default:
		c.log.Warn().Str("type", string(env.Type)).Msg("outbound buffer full, dropping message")
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	})
}

func (c *Client) ReadPump() {
	defer func() {
		c.handler.HandleDisconnect(c)
		c.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("read failed")
			}
			return
		}
		if env.Type == "" {
			continue
		}
		if env.Type == TypeChatMessage && !c.chatLimiter.Allow() {
			continue
		}
		c.handler.HandleMessage(c, env)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case env := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closed:
			return
		}
	}
}
