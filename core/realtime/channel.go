package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/streampay/sdk-go/core/logging"
	"github.com/streampay/sdk-go/core/telemetry"
	"github.com/streampay/sdk-go/core/types"
	"go.uber.org/zap"
)

// State is the channel's connection state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

const (
	// DefaultBaseDelay is the linear backoff base unit: the nth retry waits
	// n times this long.
	DefaultBaseDelay = time.Second
	// DefaultMaxReconnectAttempts bounds consecutive failed reconnection
	// attempts before the channel gives up.
	DefaultMaxReconnectAttempts = 5
)

// Conn is the duplex transport underneath the channel. *websocket.Conn
// satisfies it; tests substitute an in-memory fake.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Dialer opens a new transport connection.
type Dialer func(ctx context.Context) (Conn, error)

// WebsocketDialer dials the relay over a websocket.
func WebsocketDialer(url string) Dialer {
	return func(ctx context.Context) (Conn, error) {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to dial relay %s", url)
		}
		return conn, nil
	}
}

// Channel maintains a live event feed from the relay and redelivers typed
// events to local listeners, recovering transparently from transport drops.
//
// A Channel is an explicitly owned instance with a Connect/Disconnect
// lifecycle; construct one per process and pass it to whatever needs it.
// On drop it reconnects with linear backoff (base delay times the attempt
// number) up to the attempt ceiling, then emits EventReconnectExhausted and
// stops. A successful open resets the attempt counter, so intermittent
// flapping does not escalate backoff across unrelated outages.
//
// The channel remembers stream subscriptions and chat rooms and re-issues
// them after every successful (re)connect.
type Channel struct {
	dial      Dialer
	logger    *zap.Logger
	tracker   *telemetry.Tracker
	authToken string

	baseDelay            time.Duration
	maxReconnectAttempts int

	registry *registry

	mu                sync.Mutex
	state             State
	conn              Conn
	closed            bool
	reconnectAttempts int
	reconnectTimer    *time.Timer
	streamSubs        map[string]struct{}
	rooms             map[string]struct{}

	// wmu serializes writes; the websocket transport allows only one
	// concurrent writer.
	wmu sync.Mutex

	// afterFunc schedules reconnect attempts. Tests override it to run
	// callbacks synchronously and record delays.
	afterFunc func(time.Duration, func()) *time.Timer
}

// Option configures a Channel.
type Option func(*Channel)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Channel) { c.logger = logger }
}

// WithAuthToken makes the channel send an auth frame as the first message
// after every successful connect.
func WithAuthToken(token string) Option {
	return func(c *Channel) { c.authToken = token }
}

func WithBaseDelay(d time.Duration) Option {
	return func(c *Channel) { c.baseDelay = d }
}

func WithMaxReconnectAttempts(n int) Option {
	return func(c *Channel) { c.maxReconnectAttempts = n }
}

func WithTracker(t *telemetry.Tracker) Option {
	return func(c *Channel) { c.tracker = t }
}

// NewChannel creates a disconnected channel over the given dialer.
func NewChannel(dial Dialer, opts ...Option) *Channel {
	c := &Channel{
		dial:                 dial,
		baseDelay:            DefaultBaseDelay,
		maxReconnectAttempts: DefaultMaxReconnectAttempts,
		registry:             newRegistry(),
		streamSubs:           make(map[string]struct{}),
		rooms:                make(map[string]struct{}),
		afterFunc:            time.AfterFunc,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.Default()
	}
	return c
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers a listener for one event kind and returns its disposer.
func (c *Channel) Subscribe(kind EventKind, h HandlerFunc) *Subscription {
	return c.registry.subscribe(kind, h)
}

// Connect opens the channel. On success the reconnect counter resets, the
// auth frame (if any) is sent first, and tracked subscriptions are replayed.
// On failure a reconnect attempt is scheduled and the dial error returned.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.closed = false
	c.state = StateConnecting
	c.mu.Unlock()

	conn, err := c.dial(ctx)
	if err != nil {
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()
		c.logger.Error("failed to connect to relay", zap.Error(err))
		c.scheduleReconnect(ctx)
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.state = StateConnected
	c.reconnectAttempts = 0
	streams := keys(c.streamSubs)
	rooms := keys(c.rooms)
	c.mu.Unlock()

	c.logger.Info("relay connected")

	if c.authToken != "" {
		if err := c.writeJSON(conn, authFrame{Type: "auth", Token: c.authToken}); err != nil {
			c.logger.Error("failed to send auth frame", zap.Error(err))
		}
	}
	for _, id := range streams {
		if err := c.writeJSON(conn, outboundFrame{Type: "subscribe_stream", Payload: map[string]string{"streamId": id}}); err != nil {
			c.logger.Error("failed to replay stream subscription", zap.String("stream_id", id), zap.Error(err))
		}
	}
	for _, id := range rooms {
		if err := c.writeJSON(conn, outboundFrame{Type: "join_room", Payload: map[string]string{"roomId": id}}); err != nil {
			c.logger.Error("failed to replay room membership", zap.String("room_id", id), zap.Error(err))
		}
	}

	go c.readLoop(ctx, conn)
	return nil
}

// Disconnect tears the channel down and stops any pending reconnect. The
// channel may be connected again later.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	c.closed = true
	c.state = StateDisconnected
	conn := c.conn
	c.conn = nil
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

func (c *Channel) readLoop(ctx context.Context, conn Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleDisconnect(ctx, conn, err)
			return
		}
		c.dispatchFrame(data)
	}
}

func (c *Channel) handleDisconnect(ctx context.Context, conn Conn, cause error) {
	c.mu.Lock()
	if c.conn != conn {
		// a stale read loop from a superseded connection
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.state = StateDisconnected
	closed := c.closed
	c.mu.Unlock()

	_ = conn.Close()
	if closed {
		return
	}
	c.logger.Warn("relay disconnected", zap.Error(cause))
	c.scheduleReconnect(ctx)
}

// scheduleReconnect arms the next attempt with linear backoff, or emits the
// terminal exhaustion event once the ceiling is reached.
func (c *Channel) scheduleReconnect(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.state != StateDisconnected {
		c.mu.Unlock()
		return
	}
	if c.reconnectAttempts >= c.maxReconnectAttempts {
		c.mu.Unlock()
		c.logger.Error("max reconnection attempts reached",
			zap.Int("attempts", c.maxReconnectAttempts))
		c.tracker.IncReconnectExhausted()
		c.registry.dispatch(Event{Kind: EventReconnectExhausted})
		return
	}
	c.reconnectAttempts++
	attempt := c.reconnectAttempts
	delay := c.baseDelay * time.Duration(attempt)
	c.reconnectTimer = c.afterFunc(delay, func() {
		_ = c.Connect(ctx)
	})
	c.mu.Unlock()

	c.tracker.IncReconnect()
	c.logger.Info("scheduling relay reconnect",
		zap.Int("attempt", attempt),
		zap.Int("max_attempts", c.maxReconnectAttempts),
		zap.Duration("delay", delay))
}

// dispatchFrame parses one inbound frame and dispatches it to listeners.
// Malformed frames are logged and dropped; unknown types are logged and
// ignored so server-side protocol additions never hard-fail the channel.
func (c *Channel) dispatchFrame(data []byte) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		c.logger.Error("failed to parse relay frame", zap.Error(err))
		c.tracker.IncDroppedFrame()
		return
	}

	switch f.Type {
	case "stream_update":
		stream, err := decodeStream(f.Payload)
		if err != nil {
			c.logger.Error("failed to decode stream update", zap.Error(err))
			c.tracker.IncDroppedFrame()
			return
		}
		c.registry.dispatch(Event{Kind: EventStreamUpdated, Stream: stream, Payload: f.Payload})
	case "new_message":
		var msg types.ChatMessage
		if err := json.Unmarshal(f.Payload, &msg); err != nil {
			c.logger.Error("failed to decode chat message", zap.Error(err))
			c.tracker.IncDroppedFrame()
			return
		}
		c.registry.dispatch(Event{Kind: EventNewMessage, Message: &msg, Payload: f.Payload})
	case "user_status":
		var status userStatusPayload
		if err := json.Unmarshal(f.Payload, &status); err != nil {
			c.logger.Error("failed to decode user status", zap.Error(err))
			c.tracker.IncDroppedFrame()
			return
		}
		kind := EventUserOffline
		if status.Status == "online" {
			kind = EventUserOnline
		}
		c.registry.dispatch(Event{Kind: kind, UserID: status.UserID, Payload: f.Payload})
	case "payment_received":
		c.registry.dispatch(Event{Kind: EventPaymentReceived, Payload: f.Payload})
	case "stream_started":
		c.registry.dispatch(Event{Kind: EventStreamStarted, Payload: f.Payload})
	case "stream_ended":
		c.registry.dispatch(Event{Kind: EventStreamEnded, Payload: f.Payload})
	default:
		c.logger.Info("unknown relay message type", zap.String("type", f.Type))
	}
}

// Send writes one frame to the relay. When the channel is not connected the
// message is not queued: the send fails with a logged warning and callers
// must not assume delivery.
func (c *Channel) Send(msgType string, payload any) error {
	c.mu.Lock()
	conn := c.conn
	state := c.state
	c.mu.Unlock()

	if state != StateConnected || conn == nil {
		c.logger.Warn("relay not connected, message not sent", zap.String("type", msgType))
		return types.NewError(types.ErrMessageSendFailed, "relay channel is not connected")
	}
	if err := c.writeJSON(conn, outboundFrame{Type: msgType, Payload: payload}); err != nil {
		return types.WrapError(err, types.ErrMessageSendFailed, "failed to send relay message")
	}
	return nil
}

// SubscribeToStream asks the relay for updates about one stream. The
// subscription is remembered and replayed after reconnects even if the
// channel is currently down.
func (c *Channel) SubscribeToStream(streamID string) error {
	c.mu.Lock()
	c.streamSubs[streamID] = struct{}{}
	c.mu.Unlock()
	return c.Send("subscribe_stream", map[string]string{"streamId": streamID})
}

// UnsubscribeFromStream stops updates about one stream and forgets it.
func (c *Channel) UnsubscribeFromStream(streamID string) error {
	c.mu.Lock()
	delete(c.streamSubs, streamID)
	c.mu.Unlock()
	return c.Send("unsubscribe_stream", map[string]string{"streamId": streamID})
}

// JoinRoom enters a chat room. Membership is remembered and replayed after
// reconnects.
func (c *Channel) JoinRoom(roomID string) error {
	c.mu.Lock()
	c.rooms[roomID] = struct{}{}
	c.mu.Unlock()
	return c.Send("join_room", map[string]string{"roomId": roomID})
}

// LeaveRoom exits a chat room and forgets it.
func (c *Channel) LeaveRoom(roomID string) error {
	c.mu.Lock()
	delete(c.rooms, roomID)
	c.mu.Unlock()
	return c.Send("leave_room", map[string]string{"roomId": roomID})
}

func (c *Channel) writeJSON(conn Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.WithStack(err)
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, data)
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
