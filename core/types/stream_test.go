package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamClone(t *testing.T) {
	original := &Stream{
		ID:               "42",
		Deposit:          big.NewInt(1000),
		RemainingBalance: big.NewInt(400),
		RatePerSecond:    big.NewInt(10),
		StartTime:        100,
		StopTime:         200,
	}

	clone := original.Clone()
	require.NotNil(t, clone)

	clone.RemainingBalance.SetInt64(0)
	assert.Equal(t, int64(400), original.RemainingBalance.Int64(), "clone must not alias the original's balances")

	assert.Equal(t, int64(100), clone.Duration())
}

func TestTxReceiptEventByName(t *testing.T) {
	receipt := &TxReceipt{
		TxHash: "0xabc",
		Events: []LedgerEvent{
			{Name: "Transfer", Args: map[string]string{"value": "1"}},
			{Name: EventCreateStream, Args: map[string]string{"streamId": "7"}},
		},
	}

	ev := receipt.EventByName(EventCreateStream)
	require.NotNil(t, ev)
	assert.Equal(t, "7", ev.Args["streamId"])

	assert.Nil(t, receipt.EventByName("Withdraw"))
}
