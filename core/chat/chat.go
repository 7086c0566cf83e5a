package chat

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/streampay/sdk-go/core/logging"
	"github.com/streampay/sdk-go/core/ratelimit"
	"github.com/streampay/sdk-go/core/types"
	"go.uber.org/zap"
)

// Per-room message budget.
const (
	maxMessagesPerWindow = 10
	messageWindow        = time.Minute
)

// Relay is the outbound surface the chat service needs from the realtime
// channel.
type Relay interface {
	Send(msgType string, payload any) error
	JoinRoom(roomID string) error
	LeaveRoom(roomID string) error
}

// Service sends chat messages through the relay with validation, input
// sanitization, and per-room rate limiting.
type Service struct {
	relay    Relay
	limiter  *ratelimit.Limiter
	validate *validator.Validate
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a chat service over the given relay and limiter.
func NewService(relay Relay, limiter *ratelimit.Limiter, opts ...Option) *Service {
	s := &Service{
		relay:    relay,
		limiter:  limiter,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	return s
}

type messageInput struct {
	Message   string `validate:"required,max=1000"`
	Recipient string `validate:"required,eth_addr"`
}

type messagePayload struct {
	RoomID    string `json:"roomId"`
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

// SendMessage validates, sanitizes, and sends one message into a room.
// Sends beyond the per-room budget fail with ErrRateLimited without reaching
// the relay.
func (s *Service) SendMessage(roomID, message, recipient string) error {
	if !s.limiter.IsAllowed("message_"+roomID, maxMessagesPerWindow, messageWindow) {
		return types.NewError(types.ErrRateLimited, "too many messages sent, please wait before sending another")
	}

	if err := s.validate.Struct(messageInput{Message: message, Recipient: recipient}); err != nil {
		return types.WrapError(err, types.ErrValidation, "invalid message")
	}
	if strings.TrimSpace(message) == "" {
		return types.NewError(types.ErrValidation, "message cannot be only whitespace")
	}

	sanitized := SanitizeInput(message)
	if err := s.relay.Send("new_message", messagePayload{
		RoomID:    roomID,
		Recipient: recipient,
		Message:   sanitized,
	}); err != nil {
		return types.WrapError(err, types.ErrMessageSendFailed, "failed to send message")
	}

	s.logger.Debug("message sent", zap.String("room_id", roomID))
	return nil
}

// JoinRoom enters a chat room through the relay.
func (s *Service) JoinRoom(roomID string) error {
	if err := s.relay.JoinRoom(roomID); err != nil {
		return types.WrapError(err, types.ErrSubscriptionFailed, "failed to join chat room")
	}
	return nil
}

// LeaveRoom exits a chat room through the relay.
func (s *Service) LeaveRoom(roomID string) error {
	if err := s.relay.LeaveRoom(roomID); err != nil {
		return types.WrapError(err, types.ErrSubscriptionFailed, "failed to leave chat room")
	}
	return nil
}
