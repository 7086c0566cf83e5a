package contractsapi

import (
	"math/big"

	"github.com/streampay/sdk-go/core/types"
)

// StreamStatus derives the stream's lifecycle state from the current
// wall-clock time and its recorded fields. Transitions are one-directional
// over time (Pending, Active, Completed) except that Completed can be reached
// early by withdrawal or cancellation exhausting the balance. A cancelled
// stream is indistinguishable from one completed early at this layer; the
// streamstore package tracks cancellation separately.
func (s *StreamAPI) StreamStatus(stream *types.Stream) types.StreamStatus {
	now := s.now().Unix()

	if stream.RemainingBalance != nil && stream.RemainingBalance.Sign() == 0 {
		return types.StreamStatusCompleted
	}
	if now < stream.StartTime {
		return types.StreamStatusPending
	}
	if now >= stream.StopTime {
		return types.StreamStatusCompleted
	}
	return types.StreamStatusActive
}

// StreamedAmount computes the vested portion of the deposit as of now:
// ratePerSecond * elapsed, where elapsed is clamped to the streaming window.
// Monotonically non-decreasing until the stop time, then constant. This is
// the authoritative vesting formula and must match the ledger's accounting to
// the unit, or withdrawals come up short.
func (s *StreamAPI) StreamedAmount(stream *types.Stream) *big.Int {
	now := s.now().Unix()

	effectiveTime := now
	if stream.StopTime < effectiveTime {
		effectiveTime = stream.StopTime
	}
	elapsed := effectiveTime - stream.StartTime
	if elapsed < 0 {
		elapsed = 0
	}

	rate := stream.RatePerSecond
	if rate == nil {
		rate = big.NewInt(0)
	}
	return new(big.Int).Mul(rate, big.NewInt(elapsed))
}
