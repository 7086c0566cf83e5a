package contractsapi

import (
	"context"

	"github.com/streampay/sdk-go/core/types"
)

// GetStream reads the stream record from the ledger and reconstructs the
// client-side view. A stream that does not exist (never created, or already
// fully settled and pruned) returns (nil, nil): not-found is an answer, not a
// failure, and callers must distinguish it from a transient read error.
func (s *StreamAPI) GetStream(ctx context.Context, streamID string) (*types.Stream, error) {
	if streamID == "" {
		return nil, types.NewError(types.ErrValidation, "stream id is required")
	}

	raw, err := s.ledger.GetStream(ctx, streamID)
	if err != nil {
		if types.IsKind(err, types.ErrTimeout) {
			return nil, err
		}
		return nil, types.WrapError(err, types.ErrStreamFetchFailed, "failed to fetch stream")
	}
	if raw == nil {
		return nil, nil
	}

	return &types.Stream{
		ID:               streamID,
		Sender:           raw.Sender,
		Recipient:        raw.Recipient,
		TokenAddress:     raw.TokenAddress,
		Deposit:          raw.Deposit,
		RemainingBalance: raw.RemainingBalance,
		RatePerSecond:    raw.RatePerSecond,
		StartTime:        raw.StartTime,
		StopTime:         raw.StopTime,
		IsActive:         raw.RemainingBalance != nil && raw.RemainingBalance.Sign() > 0,
	}, nil
}
