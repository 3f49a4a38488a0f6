package collab

import (
	"context"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	writeWait    = 10 * time.Second
	pingPeriod   = 30 * time.Second
	maxFrameSize = 1 << 20
	sendBuffer   = 256
)

// Client is one websocket connection attached to a project's editor session.
// The hub is the only writer to send and closes it when the client leaves.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan *Message

	UserID      string
	DisplayName string
	ProjectID   string
	ClientID    string
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, projectID, clientID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan *Message, sendBuffer),
		UserID:      userID,
		DisplayName: displayName,
		ProjectID:   projectID,
		ClientID:    clientID,
	}
}

// Serve pumps messages in both directions until the connection drops or ctx
// ends. The client must already be registered with the hub.
func (c *Client) Serve(ctx context.Context) {
	go c.writeLoop(ctx)
	c.readLoop(ctx)
}

func (c *Client) readLoop(ctx context.Context) {
	defer func() {
		c.hub.leave(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	// Path annotations with many points exceed the default 32KB.
	c.conn.SetReadLimit(maxFrameSize)

	for {
		var msg Message
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				slog.Debug("read failed", "error", err, "client", c.ClientID)
			}
			return
		}

		// Identity comes from the connection, never from the frame.
		msg.UserID = c.UserID
		msg.ClientID = c.ClientID
		msg.ProjectID = c.ProjectID
		c.hub.submit(c, &msg)
	}
}

func (c *Client) writeLoop(ctx context.Context) {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.write(ctx, msg); err != nil {
				slog.Debug("write failed", "error", err, "client", c.ClientID)
				return
			}
		case <-ping.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, msg *Message) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return wsjson.Write(ctx, c.conn, msg)
}

// Send queues msg without blocking the hub. A client whose buffer is full
// misses the message; the next doc.sync carries the full state anyway.
func (c *Client) Send(msg *Message) {
	select {
	case c.send <- msg:
	default:
		slog.Warn("send buffer full, dropping message", "client", c.ClientID, "type", msg.Type)
	}
}
