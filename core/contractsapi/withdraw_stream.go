package contractsapi

import (
	"context"
	"math/big"

	"github.com/streampay/sdk-go/core/types"
	"go.uber.org/zap"
)

// WithdrawInput is input for WithdrawFromStream.
type WithdrawInput struct {
	StreamID string `validate:"required"`
	// Amount in smallest units. Nil withdraws the full remaining balance.
	Amount *big.Int
}

// WithdrawFromStream submits a withdrawal against the vested portion of the
// stream and returns the confirmed transaction hash. The engine does not
// pre-check vesting locally: the ledger's own accounting is authoritative and
// an over-withdrawal surfaces as an ErrWithdrawalFailed revert.
func (s *StreamAPI) WithdrawFromStream(ctx context.Context, input WithdrawInput) (string, error) {
	if err := s.validate.Struct(input); err != nil {
		return "", types.WrapError(err, types.ErrValidation, "invalid withdrawal input")
	}

	stream, err := s.GetStream(ctx, input.StreamID)
	if err != nil {
		return "", err
	}
	if stream == nil {
		return "", types.NewError(types.ErrStreamNotFound, "stream not found")
	}

	amount := input.Amount
	if amount == nil {
		amount = stream.RemainingBalance
	}

	receipt, err := s.submitWithGasMargin(ctx, types.ContractCall{
		Method: types.MethodWithdrawFromStream,
		Args:   []any{input.StreamID, amount},
	})
	if err != nil {
		return "", classifySubmitError(err, types.ErrWithdrawalFailed, "failed to withdraw from stream")
	}

	s.logger.Info("withdrawal confirmed",
		zap.String("stream_id", input.StreamID),
		zap.String("amount", amount.String()),
		zap.String("tx_hash", receipt.TxHash))

	return receipt.TxHash, nil
}
