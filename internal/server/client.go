package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teris-io/shortid"

	"github.com/sdegypt/diychach/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 4096

	// storeTimeout bounds persistence calls made from the read
	// loop so a slow store can't stall the connection.
	storeTimeout = 5 * time.Second
)

type Client struct {
	conn       *websocket.Conn
	chatServer *ChatServer
	log        *log.Logger
	user       types.User
	connId     string
	send       chan *ServerMessage
	stop       chan struct{}
	stopOnce   sync.Once
}

func NewClient(user types.User, conn *websocket.Conn, cs *ChatServer, l *log.Logger) (*Client, error) {
	connId, err := shortid.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate connection id: %w", err)
	}

	return &Client{
		conn:       conn,
		chatServer: cs,
		log:        l,
		user:       user,
		connId:     connId,
		send:       make(chan *ServerMessage, 256),
		stop:       make(chan struct{}),
	}, nil
}

func (c *Client) ID() string {
	return c.connId
}

// Queue hands a message to the write pump without blocking. A false
// result means the send buffer was full and the message was dropped.
func (c *Client) Queue(msg *ServerMessage) bool {
	return c.queueMessage(msg)
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.log.Printf("write exiting for connection %s", c.connId)
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := serializeMessage(msg)
			if err != nil {
				c.log.Println("failed to serialize message:", err)
				continue
			}

			if !c.sendMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !c.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
		c.log.Printf("read exiting for connection %s", c.connId)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Println("error parsing message:", err)
			c.queueMessage(ErrInvalidMessage(-1))
			continue
		}

		msg.client = c

		switch {
		case msg.Join != nil:
			c.handleJoin(&msg)
		case msg.Publish != nil:
			c.handlePublish(&msg)
		case msg.Delete != nil:
			c.handleDelete(&msg)
		default:
			c.queueMessage(ErrInvalidMessage(msg.Id))
		}
	}
}

// handleJoin records this connection as the account's live address.
// Joining again, from this or another connection, overwrites the
// earlier entry.
func (c *Client) handleJoin(msg *ClientMessage) {
	c.chatServer.registry.Join(c.user.Id, c)
	c.queueMessage(NoErrAccepted(msg.Id))
}

func (c *Client) handlePublish(msg *ClientMessage) {
	if err := msg.Publish.Validate(); err != nil {
		c.log.Printf("publish from connection %s: %v", c.connId, err)
		c.queueMessage(ErrInvalidMessage(msg.Id))
		return
	}

	c.chatServer.relay.RelayMessage(msg.Publish)
}

func (c *Client) handleDelete(msg *ClientMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := c.chatServer.relay.RelayDelete(ctx, msg.Delete.MessageId); err != nil {
		c.log.Printf("relay delete: %v", err)
		c.queueMessage(ErrInternalError(msg.Id))
	}
}

func (c *Client) queueMessage(msg *ServerMessage) bool {
	select {
	case c.send <- msg:
	default:
		c.log.Println("failed to send message to client, channel is full")
		return false
	}

	return true
}

func serializeMessage(msg *ServerMessage) ([]byte, error) {
	return json.Marshal(msg)
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Client) cleanup() {
	c.chatServer.deRegisterChan <- c
	c.stopClient()
}
