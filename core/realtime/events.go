package realtime

import (
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"
	"github.com/streampay/sdk-go/core/types"
)

// EventKind identifies one variant of the realtime event union.
type EventKind string

const (
	EventStreamUpdated   EventKind = "stream_updated"
	EventNewMessage      EventKind = "new_message"
	EventUserOnline      EventKind = "user_online"
	EventUserOffline     EventKind = "user_offline"
	EventPaymentReceived EventKind = "payment_received"
	EventStreamStarted   EventKind = "stream_started"
	EventStreamEnded     EventKind = "stream_ended"

	// EventReconnectExhausted is the terminal condition emitted when the
	// channel stops retrying after the reconnection ceiling.
	EventReconnectExhausted EventKind = "reconnect_exhausted"
)

// Event is one dispatched realtime notification. Exactly the fields relevant
// to the Kind are populated; Payload always carries the raw frame payload for
// variants without a typed projection.
type Event struct {
	Kind    EventKind
	Stream  *types.Stream
	Message *types.ChatMessage
	UserID  string
	Payload json.RawMessage
}

// frame is the relay wire shape: {"type": ..., "payload": ...}.
type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// outboundFrame is the client-to-relay wire shape.
type outboundFrame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// authFrame is the first outbound frame after connect when a token is held.
type authFrame struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// streamPayload is the relay's stream_update payload. Amounts travel as
// NUMERIC(78,0) strings to preserve precision.
type streamPayload struct {
	ID               string `json:"id"`
	Sender           string `json:"sender"`
	Recipient        string `json:"recipient"`
	TokenAddress     string `json:"token_address"`
	Deposit          string `json:"deposit"`
	RemainingBalance string `json:"remaining_balance"`
	RatePerSecond    string `json:"rate_per_second"`
	StartTime        int64  `json:"start_time"`
	StopTime         int64  `json:"stop_time"`
}

// userStatusPayload is the relay's user_status payload.
type userStatusPayload struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

func decodeStream(payload json.RawMessage) (*types.Stream, error) {
	var p streamPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, errors.Wrap(err, "malformed stream payload")
	}

	deposit, err := parseBigInt(p.Deposit, "deposit")
	if err != nil {
		return nil, err
	}
	remaining, err := parseBigInt(p.RemainingBalance, "remaining_balance")
	if err != nil {
		return nil, err
	}
	rate, err := parseBigInt(p.RatePerSecond, "rate_per_second")
	if err != nil {
		return nil, err
	}

	return &types.Stream{
		ID:               p.ID,
		Sender:           p.Sender,
		Recipient:        p.Recipient,
		TokenAddress:     p.TokenAddress,
		Deposit:          deposit,
		RemainingBalance: remaining,
		RatePerSecond:    rate,
		StartTime:        p.StartTime,
		StopTime:         p.StopTime,
		IsActive:         remaining.Sign() > 0,
	}, nil
}

func parseBigInt(s, field string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Errorf("invalid numeric value for %s: %q", field, s)
	}
	return v, nil
}
