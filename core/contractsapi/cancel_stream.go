package contractsapi

import (
	"context"

	"github.com/streampay/sdk-go/core/types"
	"go.uber.org/zap"
)

// CancelStream submits a cancellation transaction and returns the confirmed
// transaction hash. The ledger pays out the vested remainder to the recipient
// and returns the rest to the sender atomically; the client neither computes
// nor enforces that split.
func (s *StreamAPI) CancelStream(ctx context.Context, streamID string) (string, error) {
	if streamID == "" {
		return "", types.NewError(types.ErrValidation, "stream id is required")
	}

	receipt, err := s.submitWithGasMargin(ctx, types.ContractCall{
		Method: types.MethodCancelStream,
		Args:   []any{streamID},
	})
	if err != nil {
		return "", classifySubmitError(err, types.ErrCancellationFailed, "failed to cancel stream")
	}

	s.logger.Info("stream cancelled",
		zap.String("stream_id", streamID),
		zap.String("tx_hash", receipt.TxHash))

	return receipt.TxHash, nil
}
