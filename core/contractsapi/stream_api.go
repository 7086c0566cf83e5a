package contractsapi

import (
	"context"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/streampay/sdk-go/core/logging"
	"github.com/streampay/sdk-go/core/types"
	"go.uber.org/zap"
)

// Default 20% safety margin over the estimated execution cost, reducing
// mid-flight underpricing failures without resubmission.
const DefaultGasMarginPercent = 20

// DefaultTokenDecimals is the smallest-unit scale used when none is
// configured (18-decimal tokens).
const DefaultTokenDecimals = 18

// StreamAPI is the stream accounting engine. It turns validated configuration
// into ledger transactions, and ledger-held stream data into client-visible
// status and progress. It holds no stream state of its own: the ledger is
// authoritative, and callers merge results into their own local state.
type StreamAPI struct {
	ledger           types.Ledger
	validate         *validator.Validate
	logger           *zap.Logger
	now              func() time.Time
	tokenDecimals    uint32
	gasMarginPercent int64
}

// Options configures a StreamAPI.
type Options struct {
	Ledger types.Ledger `validate:"required"`
	// Logger defaults to the package logger.
	Logger *zap.Logger
	// Clock defaults to time.Now. Injected so status and vesting
	// derivations are testable at fixed instants.
	Clock func() time.Time
	// TokenDecimals defaults to DefaultTokenDecimals.
	TokenDecimals uint32
	// GasMarginPercent defaults to DefaultGasMarginPercent.
	GasMarginPercent int64
}

// LoadStreamAPI creates the engine over an injected ledger.
func LoadStreamAPI(opts Options) (*StreamAPI, error) {
	if err := validator.New().Struct(opts); err != nil {
		return nil, errors.WithStack(err)
	}

	s := &StreamAPI{
		ledger:           opts.Ledger,
		validate:         validator.New(),
		logger:           opts.Logger,
		now:              opts.Clock,
		tokenDecimals:    opts.TokenDecimals,
		gasMarginPercent: opts.GasMarginPercent,
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.tokenDecimals == 0 {
		s.tokenDecimals = DefaultTokenDecimals
	}
	if s.gasMarginPercent == 0 {
		s.gasMarginPercent = DefaultGasMarginPercent
	}
	return s, nil
}

// submitWithGasMargin estimates the execution cost, inflates it by the
// configured margin, and submits the call.
func (s *StreamAPI) submitWithGasMargin(ctx context.Context, call types.ContractCall) (*types.TxReceipt, error) {
	estimated, err := s.ledger.EstimateGas(ctx, call)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to estimate gas for %s", call.Method)
	}

	gasLimit := new(big.Int).Mul(estimated, big.NewInt(100+s.gasMarginPercent))
	gasLimit.Div(gasLimit, big.NewInt(100))

	return s.ledger.Submit(ctx, call, types.TxOptions{GasLimit: gasLimit})
}

// classifySubmitError normalizes a ledger submission failure. Wallet-level
// failures and timeouts already classified by the ledger pass through so the
// caller can render an actionable message; anything else is a post-submission
// revert and is wrapped with the operation's failure kind, preserving the
// revert reason.
func classifySubmitError(err error, kind types.ErrorKind, message string) error {
	switch types.KindOf(err) {
	case types.ErrInsufficientFunds, types.ErrUserRejected, types.ErrTimeout:
		return err
	default:
		return types.WrapError(err, kind, message)
	}
}
