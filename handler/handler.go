package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"chat-demo/internal/domain"
	"chat-demo/internal/usecase"
)

const (
	correlationHeader    = "X-Correlation-Id"
	methodNotAllowedText = "Method Not Allowed"
	allowedMethods       = "POST, OPTIONS"
)

// Chatter is the chat use case consumed by the handler.
type Chatter interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
	Sign(ctx context.Context, kind usecase.SignatureKind) string
}

// Handler translates transport requests into chat use case calls. The same
// Handler serves API Gateway proxy events and plain net/http requests.
type Handler struct {
	chat          Chatter
	allowedOrigin string
	logger        *slog.Logger
}

type Option func(*Handler)

// WithAllowedOrigin sets the Access-Control-Allow-Origin value. Defaults to "*".
func WithAllowedOrigin(origin string) Option {
	return func(h *Handler) {
		if origin = strings.TrimSpace(origin); origin != "" {
			h.allowedOrigin = origin
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func NewHandler(chat Chatter, opts ...Option) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("handler: chat use case must not be nil")
	}
	h := &Handler{
		chat:          chat,
		allowedOrigin: "*",
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

type response struct {
	status  int
	headers map[string]string
	body    []byte
}

// Handle is the Lambda entrypoint for API Gateway proxy integrations.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(event.Headers)

	method := event.HTTPMethod
	if method == "" {
		// Direct invocations carry no method.
		method = http.MethodPost
	}

	body := []byte(event.Body)
	var decodeErr error
	if event.IsBase64Encoded {
		body, decodeErr = base64.StdEncoding.DecodeString(event.Body)
	}

	var res response
	if decodeErr != nil {
		res = h.fail(ctx, corrID, usecase.Internal("decode_base64_body", decodeErr))
	} else {
		res = h.serve(ctx, method, body, corrID)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: res.status,
		Headers:    res.headers,
		Body:       string(res.body),
	}, nil
}

func (h *Handler) serve(ctx context.Context, method string, body []byte, corrID string) response {
	switch method {
	case http.MethodOptions:
		return h.respond(http.StatusNoContent, corrID, nil)
	case http.MethodPost:
	default:
		res := h.writeJSON(http.StatusMethodNotAllowed, corrID, domain.ErrorResponse{
			Error:            methodNotAllowedText,
			BackendSignature: h.chat.Sign(ctx, usecase.SignatureErrorProcessed),
		})
		res.headers["Allow"] = allowedMethods
		return res
	}

	req, err := decodeRequest(body)
	if err != nil {
		return h.fail(ctx, corrID, usecase.Internal("decode_body", err))
	}

	out, err := h.chat.Chat(ctx, usecase.ChatInput{Message: req.Message})
	if err != nil {
		return h.fail(ctx, corrID, err)
	}

	return h.writeJSON(http.StatusOK, corrID, domain.ChatResponse{
		Response:         out.Response,
		BackendSignature: out.Signature,
	})
}

func (h *Handler) fail(ctx context.Context, corrID string, err error) response {
	var usecaseErr *usecase.Error
	if !errors.As(err, &usecaseErr) {
		usecaseErr = usecase.Internal("unexpected_error", err)
	}

	status := statusFor(usecaseErr.Code)
	attrs := []any{
		"correlationId", corrID,
		"code", usecaseErr.Code,
		"reason", usecaseErr.Reason,
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "chat request faulted", append(attrs, "err", err)...)
	} else {
		h.logger.WarnContext(ctx, "chat request rejected", attrs...)
	}

	return h.writeJSON(status, corrID, domain.ErrorResponse{
		Error:            usecaseErr.Message(),
		BackendSignature: h.chat.Sign(ctx, usecase.SignatureErrorProcessed),
		Details:          usecaseErr.Details(),
	})
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeJSON(status int, corrID string, v any) response {
	body, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("failed to encode response", "correlationId", corrID, "err", err)
		status = http.StatusInternalServerError
		body = []byte(`{"error":"` + usecase.InternalMessage + `"}`)
	}
	return h.respond(status, corrID, body)
}

func (h *Handler) respond(status int, corrID string, body []byte) response {
	return response{
		status: status,
		headers: map[string]string{
			"Content-Type":                 "application/json",
			"Access-Control-Allow-Origin":  h.allowedOrigin,
			"Access-Control-Allow-Methods": allowedMethods,
			"Access-Control-Allow-Headers": "Content-Type, " + correlationHeader,
			correlationHeader:              corrID,
		},
		body: body,
	}
}

// decodeRequest parses the request body. An empty body or a JSON value that
// is not an object carries no message; malformed JSON is an error. Only the
// exact key "message" is read.
func decodeRequest(body []byte) (domain.ChatRequest, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return domain.ChatRequest{}, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return domain.ChatRequest{}, nil
		}
		return domain.ChatRequest{}, err
	}
	return domain.ChatRequest{Message: fields["message"]}, nil
}

func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return newUUID()
}

var newUUID = func() string {
	return uuid.NewString()
}
