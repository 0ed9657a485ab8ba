package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultBotName is the display name used in signatures unless overridden.
const DefaultBotName = "SimpleBot"

// nameRetryBackoff is how long a failed bot name lookup is not retried.
const nameRetryBackoff = 30 * time.Second

type ParamGetter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

type ChatService struct {
	botName   string
	params    ParamGetter
	paramName string
	logger    *slog.Logger
	now       func() time.Time
	reply     func(string) string

	nameMu      sync.RWMutex
	nameLoaded  bool
	loadedName  string
	nameLoading bool
	nameRetryAt time.Time
}

type ChatInput struct {
	Message json.RawMessage
}

type ChatOutput struct {
	Response  string
	Signature string
}

type Option func(*ChatService)

// WithBotName overrides the built-in display name.
func WithBotName(name string) Option {
	return func(s *ChatService) {
		if name = strings.TrimSpace(name); name != "" {
			s.botName = name
		}
	}
}

// WithBotNameParameter resolves the display name from a parameter store on
// first use. The static name is used until a lookup succeeds.
func WithBotNameParameter(p ParamGetter, name string) Option {
	return func(s *ChatService) {
		s.params = p
		s.paramName = strings.TrimSpace(name)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *ChatService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *ChatService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewChatService(opts ...Option) (*ChatService, error) {
	s := &ChatService{
		botName: DefaultBotName,
		logger:  slog.Default(),
		now:     time.Now,
		reply:   Reply,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.params != nil && s.paramName == "" {
		return nil, errors.New("usecase: bot name parameter must not be empty")
	}
	if s.params == nil && s.paramName != "" {
		return nil, errors.New("usecase: param getter must not be nil")
	}
	return s, nil
}

// Chat validates the message and builds the reply. Any panic while
// computing the reply is reported as an internal error.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (out ChatOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = ChatOutput{}
			err = newError(ErrorInternal, "reply_panic", fmt.Errorf("%v", r))
		}
	}()

	message, verr := decodeMessage(in.Message)
	if verr != nil {
		return ChatOutput{}, verr
	}

	response := s.reply(message)
	return ChatOutput{
		Response:  response,
		Signature: s.Sign(ctx, SignatureProcessed),
	}, nil
}

// Sign returns a signature of the given kind stamped with the current time.
func (s *ChatService) Sign(ctx context.Context, kind SignatureKind) string {
	return FormatSignature(kind, s.resolveBotName(ctx), s.now())
}

// resolveBotName returns the parameter store name once loaded. The lookup
// runs outside the lock and by one caller at a time; other callers, and every
// caller within nameRetryBackoff of a failure, get the static name.
func (s *ChatService) resolveBotName(ctx context.Context) string {
	if s.params == nil {
		return s.botName
	}

	s.nameMu.RLock()
	if s.nameLoaded {
		name := s.loadedName
		s.nameMu.RUnlock()
		return name
	}
	s.nameMu.RUnlock()

	s.nameMu.Lock()
	if s.nameLoaded {
		name := s.loadedName
		s.nameMu.Unlock()
		return name
	}
	if s.nameLoading || s.now().Before(s.nameRetryAt) {
		s.nameMu.Unlock()
		return s.botName
	}
	s.nameLoading = true
	s.nameMu.Unlock()

	name, err := s.lookupBotName(ctx)

	s.nameMu.Lock()
	defer s.nameMu.Unlock()
	s.nameLoading = false
	if err != nil {
		s.nameRetryAt = s.now().Add(nameRetryBackoff)
		s.logger.Warn("bot name lookup failed, using static name", "param", s.paramName, "retryIn", nameRetryBackoff, "err", err)
		return s.botName
	}
	name = strings.TrimSpace(name)
	if name == "" {
		s.logger.Warn("bot name parameter is empty, using static name", "param", s.paramName)
		name = s.botName
	}
	s.loadedName = name
	s.nameLoaded = true
	return name
}

func (s *ChatService) lookupBotName(ctx context.Context) (name string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("usecase: bot name lookup panicked: %v", r)
		}
	}()
	return s.params.GetParameter(ctx, s.paramName)
}
