package spclient

import (
	"context"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/streampay/sdk-go/core/apiclient"
	"github.com/streampay/sdk-go/core/chat"
	"github.com/streampay/sdk-go/core/config"
	"github.com/streampay/sdk-go/core/contractsapi"
	"github.com/streampay/sdk-go/core/logging"
	"github.com/streampay/sdk-go/core/ratelimit"
	"github.com/streampay/sdk-go/core/realtime"
	"github.com/streampay/sdk-go/core/streamstore"
	"github.com/streampay/sdk-go/core/telemetry"
	"github.com/streampay/sdk-go/core/types"
	"go.uber.org/zap"
)

// Client is the SDK facade: it wires the stream accounting engine, the
// realtime channel, the REST client, chat, and the local stream store behind
// one explicitly constructed instance. The realtime channel has an explicit
// Connect/Disconnect lifecycle owned by this client; nothing here is a
// process-wide singleton.
type Client struct {
	Ledger types.Ledger `validate:"required"`

	logger  *zap.Logger
	tracker *telemetry.Tracker
	clock   func() time.Time
	dialer  realtime.Dialer

	streams *contractsapi.StreamAPI
	channel *realtime.Channel
	api     *apiclient.Client
	chat    *chat.Service
	limiter *ratelimit.Limiter
	store   *streamstore.Store
}

// Option configures a Client.
type Option func(*Client)

// WithLedger injects the contract-call abstraction the engine submits
// through.
func WithLedger(ledger types.Ledger) Option {
	return func(c *Client) { c.Ledger = ledger }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithTracker(t *telemetry.Tracker) Option {
	return func(c *Client) { c.tracker = t }
}

// WithClock injects the time source used for status and vesting derivations.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.clock = now }
}

// WithDialer overrides the relay dialer, used by tests.
func WithDialer(d realtime.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// NewClient builds a client from configuration and options.
func NewClient(cfg *config.Config, options ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	c := &Client{}
	for _, option := range options {
		option(c)
	}
	if c.logger == nil {
		c.logger = logging.Default()
	}

	if err := validator.New().Struct(c); err != nil {
		return nil, errors.WithStack(err)
	}

	streams, err := contractsapi.LoadStreamAPI(contractsapi.Options{
		Ledger:           c.Ledger,
		Logger:           c.logger,
		Clock:            c.clock,
		TokenDecimals:    cfg.TokenDecimals,
		GasMarginPercent: cfg.GasMarginPercent,
	})
	if err != nil {
		return nil, err
	}
	c.streams = streams

	dialer := c.dialer
	if dialer == nil {
		dialer = realtime.WebsocketDialer(cfg.RelayURL)
	}
	c.channel = realtime.NewChannel(dialer,
		realtime.WithLogger(c.logger),
		realtime.WithAuthToken(cfg.AuthToken),
		realtime.WithBaseDelay(cfg.ReconnectBaseDelay),
		realtime.WithMaxReconnectAttempts(cfg.MaxReconnectAttempts),
		realtime.WithTracker(c.tracker),
	)

	c.api = apiclient.NewClient(cfg.APIBaseURL, apiclient.WithLogger(c.logger))
	if cfg.AuthToken != "" {
		c.api.SetAuthToken(cfg.AuthToken)
	}

	c.limiter = ratelimit.NewLimiter(ratelimit.WithTracker(c.tracker))
	c.chat = chat.NewService(c.channel, c.limiter, chat.WithLogger(c.logger))
	c.store = streamstore.NewStore(streamstore.WithLogger(c.logger))

	// Keep the local view fresh from relay pushes. Both the push event and
	// a directly returned transaction result are eventually consistent
	// signals; the store upserts whichever arrives and callers re-read
	// authoritative state when they need certainty.
	c.channel.Subscribe(realtime.EventStreamUpdated, func(ev realtime.Event) {
		c.store.ApplyUpdate(ev.Stream)
	})

	return c, nil
}

// Connect opens the realtime channel.
func (c *Client) Connect(ctx context.Context) error {
	return c.channel.Connect(ctx)
}

// Disconnect tears the realtime channel down.
func (c *Client) Disconnect() {
	c.channel.Disconnect()
}

// CreateStream validates the configuration and submits the creation
// transaction, returning the ledger-assigned stream id.
func (c *Client) CreateStream(ctx context.Context, cfg types.StreamConfig) (string, error) {
	return c.streams.CreateStream(ctx, cfg)
}

// GetStream reads a stream from the ledger; (nil, nil) means not found.
func (c *Client) GetStream(ctx context.Context, streamID string) (*types.Stream, error) {
	return c.streams.GetStream(ctx, streamID)
}

// WithdrawFromStream withdraws from the vested balance; a nil amount
// withdraws everything remaining.
func (c *Client) WithdrawFromStream(ctx context.Context, streamID string, amount *big.Int) (string, error) {
	return c.streams.WithdrawFromStream(ctx, contractsapi.WithdrawInput{
		StreamID: streamID,
		Amount:   amount,
	})
}

// CancelStream cancels a stream and marks it cancelled in the local store so
// its status stays distinguishable from early completion.
func (c *Client) CancelStream(ctx context.Context, streamID string) (string, error) {
	txHash, err := c.streams.CancelStream(ctx, streamID)
	if err != nil {
		return "", err
	}
	c.store.MarkCancelled(streamID)
	return txHash, nil
}

// StreamStatus derives the stream's current lifecycle state.
func (c *Client) StreamStatus(stream *types.Stream) types.StreamStatus {
	return c.streams.StreamStatus(stream)
}

// StreamedAmount computes the vested portion of the deposit as of now.
func (c *Client) StreamedAmount(stream *types.Stream) *big.Int {
	return c.streams.StreamedAmount(stream)
}

// Realtime returns the realtime channel for subscriptions.
func (c *Client) Realtime() *realtime.Channel {
	return c.channel
}

// Chat returns the chat service.
func (c *Client) Chat() *chat.Service {
	return c.chat
}

// API returns the REST client for the collaborating backend.
func (c *Client) API() *apiclient.Client {
	return c.api
}

// Store returns the local stream store.
func (c *Client) Store() *streamstore.Store {
	return c.store
}

// RateLimiter returns the client's shared admission-control limiter.
func (c *Client) RateLimiter() *ratelimit.Limiter {
	return c.limiter
}
