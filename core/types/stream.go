package types

import (
	"math/big"
	"time"
)

// StreamStatus is the client-visible lifecycle state of a stream. Pending,
// Active and Completed are derived purely from wall-clock time and recorded
// fields; Cancelled is only observable through client-side bookkeeping, since
// a zero remaining balance before the stop time is indistinguishable from
// early completion at the ledger layer.
type StreamStatus string

const (
	StreamStatusPending   StreamStatus = "pending"
	StreamStatusActive    StreamStatus = "active"
	StreamStatusCompleted StreamStatus = "completed"
	StreamStatusCancelled StreamStatus = "cancelled"
)

// Stream is one active or historical value-transfer agreement as recorded on
// the ledger. The ledger is authoritative: everything here is a read-side
// reconstruction, and only a re-read may change RemainingBalance.
type Stream struct {
	ID           string `json:"id"`
	Sender       string `json:"sender"`
	Recipient    string `json:"recipient"`
	TokenAddress string `json:"token_address"`

	// Amounts are in the token's smallest unit (NUMERIC(78,0) scale).
	Deposit          *big.Int `json:"-"`
	RemainingBalance *big.Int `json:"-"`
	RatePerSecond    *big.Int `json:"-"`

	// Unix seconds. StopTime is strictly greater than StartTime.
	StartTime int64 `json:"start_time"`
	StopTime  int64 `json:"stop_time"`

	IsActive bool `json:"is_active"`
}

// Duration returns the streaming window in seconds.
func (s *Stream) Duration() int64 {
	return s.StopTime - s.StartTime
}

// Clone returns a deep copy so that shared snapshots cannot be mutated
// through aliased big.Int pointers.
func (s *Stream) Clone() *Stream {
	if s == nil {
		return nil
	}
	out := *s
	if s.Deposit != nil {
		out.Deposit = new(big.Int).Set(s.Deposit)
	}
	if s.RemainingBalance != nil {
		out.RemainingBalance = new(big.Int).Set(s.RemainingBalance)
	}
	if s.RatePerSecond != nil {
		out.RatePerSecond = new(big.Int).Set(s.RatePerSecond)
	}
	return &out
}

// StreamConfig is the validated input for stream creation. It never reaches
// the ledger in rejected form.
type StreamConfig struct {
	Recipient    string    `validate:"required,eth_addr"`
	Amount       string    `validate:"required"`
	TokenAddress string    `validate:"required,eth_addr"`
	StartTime    time.Time `validate:"required"`
	StopTime     time.Time `validate:"required,gtfield=StartTime"`
	Description  string    `validate:"max=500"`
}

// ChatMessage is a single relay-delivered chat message.
type ChatMessage struct {
	ID          string `json:"id"`
	Sender      string `json:"sender"`
	Recipient   string `json:"recipient"`
	Message     string `json:"message"`
	Timestamp   int64  `json:"timestamp"`
	IsEncrypted bool   `json:"is_encrypted"`
}
