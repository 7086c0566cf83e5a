package types

import (
	"context"
	"math/big"
)

// Contract method names on the streaming contract.
const (
	MethodCreateStream       = "createStream"
	MethodWithdrawFromStream = "withdrawFromStream"
	MethodCancelStream       = "cancelStream"
)

// EventCreateStream is the creation event the ledger emits with the assigned
// stream id.
const EventCreateStream = "CreateStream"

// ContractCall is one invocation of a method on the streaming contract.
type ContractCall struct {
	Method string
	Args   []any
}

// TxOptions carries per-transaction overrides for a submission.
type TxOptions struct {
	// GasLimit caps the fee the submission may spend. Nil lets the
	// underlying transport choose.
	GasLimit *big.Int
}

// LedgerEvent is one event emitted by a confirmed transaction.
type LedgerEvent struct {
	Name string
	Args map[string]string
}

// TxReceipt is the confirmation record of a submitted transaction.
type TxReceipt struct {
	TxHash      string
	BlockHeight int64
	Events      []LedgerEvent
}

// EventByName returns the first emitted event with the given name, or nil.
func (r *TxReceipt) EventByName(name string) *LedgerEvent {
	for i := range r.Events {
		if r.Events[i].Name == name {
			return &r.Events[i]
		}
	}
	return nil
}

// RawStream is the stream record exactly as the ledger returns it, before the
// SDK derives any client-side state.
type RawStream struct {
	Sender           string
	Recipient        string
	TokenAddress     string
	Deposit          *big.Int
	RemainingBalance *big.Int
	RatePerSecond    *big.Int
	StartTime        int64
	StopTime         int64
}

// Ledger abstracts the contract-call surface of the external ledger. This
// interface allows using different transport implementations without changing
// SDK code: a JSON-RPC node client, a wallet bridge, or a mock for testing.
//
// Implementations are expected to classify their own submission failures:
// wallet-level rejections surface as ErrInsufficientFunds or ErrUserRejected,
// deadline overruns as ErrTimeout. Anything else is treated by the SDK as a
// post-submission revert and wrapped with the operation's failure kind.
type Ledger interface {
	// EstimateGas returns the estimated execution cost of the call.
	EstimateGas(ctx context.Context, call ContractCall) (*big.Int, error)

	// Submit signs, submits, and waits for confirmation of the call,
	// returning the confirmation receipt with any emitted events.
	Submit(ctx context.Context, call ContractCall, opts TxOptions) (*TxReceipt, error)

	// GetStream reads the raw stream record. A stream that does not exist
	// returns (nil, nil), not an error: callers must distinguish "never
	// existed" from a transient read failure.
	GetStream(ctx context.Context, streamID string) (*RawStream, error)
}
