package contractsapi

import (
	"context"
	"math/big"

	"github.com/streampay/sdk-go/core/types"
	"github.com/streampay/sdk-go/core/util"
	"go.uber.org/zap"
)

// createStreamArgs is the contract argument order for createStream.
type createStreamArgs struct {
	Recipient    string   `validate:"required"`
	Deposit      *big.Int `validate:"required"`
	TokenAddress string   `validate:"required"`
	StartTime    int64    `validate:"required"`
	StopTime     int64    `validate:"required"`
}

// CreateStream validates the configuration, truncates the deposit to the
// largest value evenly divisible by the stream duration (guaranteeing an
// exact integer rate per second), submits the creation transaction with a
// gas-margin buffer, and returns the stream id assigned by the ledger.
//
// Up to duration-1 smallest units of the requested amount are deliberately
// not deposited; callers wanting the exact figure can recompute it from the
// returned stream.
func (s *StreamAPI) CreateStream(ctx context.Context, config types.StreamConfig) (string, error) {
	if err := s.validateConfig(config); err != nil {
		return "", err
	}

	deposit, err := util.ParseTokenAmount(config.Amount, s.tokenDecimals)
	if err != nil {
		return "", types.WrapError(err, types.ErrValidation, "invalid stream configuration: amount must be a positive number")
	}

	startTime := config.StartTime.Unix()
	stopTime := config.StopTime.Unix()
	duration := stopTime - startTime

	remainder := new(big.Int).Mod(deposit, big.NewInt(duration))
	adjustedDeposit := new(big.Int).Sub(deposit, remainder)

	if adjustedDeposit.Sign() <= 0 {
		return "", types.NewError(types.ErrInvalidAmount, "deposit amount too small for the specified duration")
	}

	args, err := util.StructAsArgs(createStreamArgs{
		Recipient:    config.Recipient,
		Deposit:      adjustedDeposit,
		TokenAddress: config.TokenAddress,
		StartTime:    startTime,
		StopTime:     stopTime,
	})
	if err != nil {
		return "", types.WrapError(err, types.ErrValidation, "invalid stream configuration")
	}

	receipt, err := s.submitWithGasMargin(ctx, types.ContractCall{
		Method: types.MethodCreateStream,
		Args:   args,
	})
	if err != nil {
		return "", classifySubmitError(err, types.ErrStreamCreationFailed, "failed to create stream")
	}

	event := receipt.EventByName(types.EventCreateStream)
	if event == nil {
		return "", types.NewError(types.ErrEventNotFound, "stream creation event not found")
	}
	streamID, ok := event.Args["streamId"]
	if !ok || streamID == "" {
		return "", types.NewError(types.ErrEventNotFound, "stream creation event missing stream id")
	}

	s.logger.Info("stream created",
		zap.String("stream_id", streamID),
		zap.String("tx_hash", receipt.TxHash),
		zap.String("deposit", adjustedDeposit.String()))

	return streamID, nil
}

// validateConfig checks the schema rules plus the cross-field constraints the
// tag syntax cannot express (start strictly in the future).
func (s *StreamAPI) validateConfig(config types.StreamConfig) error {
	if err := s.validate.Struct(config); err != nil {
		return types.WrapError(err, types.ErrValidation, "invalid stream configuration")
	}
	if !config.StartTime.After(s.now()) {
		return types.NewError(types.ErrValidation, "invalid stream configuration: start time must be in the future")
	}
	return nil
}
