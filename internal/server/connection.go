package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn      *websocket.Conn
	outbox    chan *Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	server    *Server

	table  *Table
	handle string
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, server *Server) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		outbox: make(chan *Message, 256),
		logger: logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
		server: server,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.outbox)
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// A hook raced with Close
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
	}

	select {
	case c.outbox <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) send(typ MessageType, data any) {
	msg, err := NewMessage(typ, data)
	if err != nil {
		c.logger.Error("Failed to encode message", "type", typ, "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

// seat binds the connection to a table seat
func (c *Connection) seat(t *Table, handle string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table = t
	c.handle = handle
}

// Handle returns the seat handle, empty before joining
func (c *Connection) Handle() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.handle
}

// Table returns the joined table, if any
func (c *Connection) Table() *Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
	ErrNotSeated        = errors.New("join a table first")
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.outbox:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "handle", c.Handle())

	switch {
	case msg.Type == MessageTypeJoin:
		var data JoinData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join data")
			return
		}
		c.handleJoin(data)

	case msg.Type == MessageTypeState:
		c.handleState()

	case msg.Type.IsIntent():
		var data PlayCardData
		if msg.Type == MessageTypePlayCard {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				c.sendError("invalid_message", "Failed to parse play card data")
				return
			}
		}
		c.handleIntent(msg.Type, data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	c.send(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
}

func (c *Connection) handleJoin(data JoinData) {
	c.logger.Info("Join request", "table", data.Table, "name", data.Name, "rejoin", data.Handle != "")

	if current := c.Table(); current != nil {
		c.sendError("already_joined", "Already seated at "+current.Name())
		return
	}

	t := c.server.Table(data.Table)
	if t == nil {
		c.sendError("table_not_found", ErrTableNotFound.Error())
		return
	}

	joined, err := t.Join(c, data)
	if err != nil {
		c.sendError(joinErrorCode(err), err.Error())
		return
	}
	c.send(MessageTypeJoined, joined)

	if data.Handle != "" {
		c.handleState()
		return
	}
	if joined.MatchID != "" {
		t.Start()
	}
}

func joinErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrTableFull):
		return "table_full"
	case errors.Is(err, ErrNameRequired):
		return "name_required"
	case errors.Is(err, ErrSeatMismatch):
		return "seat_mismatch"
	}
	return ErrorCode(err)
}

func (c *Connection) handleState() {
	t := c.Table()
	if t == nil {
		c.sendError("not_seated", ErrNotSeated.Error())
		return
	}
	state, err := t.State(c)
	if err != nil {
		c.sendError("match_not_started", err.Error())
		return
	}
	c.send(MessageTypeState, state)
}

func (c *Connection) handleIntent(typ MessageType, data PlayCardData) {
	t := c.Table()
	if t == nil {
		c.sendError("not_seated", ErrNotSeated.Error())
		return
	}

	res, err := t.Intent(c, typ, data)
	if err != nil {
		c.sendError("match_not_started", err.Error())
		return
	}
	if !res.Success {
		c.logger.Debug("Intent rejected", "type", typ, "handle", c.Handle(), "error", res.Err)
	}
	c.send(MessageTypeResult, ResultData{
		Intent:  typ,
		Success: res.Success,
		Message: res.Message,
		Code:    ErrorCode(res.Err),
	})
}
