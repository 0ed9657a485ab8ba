package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"chat-demo/internal/domain"
	"chat-demo/internal/usecase"
)

type stubUseCase struct {
	out usecase.ChatOutput
	err error
	in  usecase.ChatInput
}

func (s *stubUseCase) Chat(_ context.Context, in usecase.ChatInput) (usecase.ChatOutput, error) {
	s.in = in
	return s.out, s.err
}

func (s *stubUseCase) Sign(_ context.Context, kind usecase.SignatureKind) string {
	return string(kind) + " by Stub @ 2026-10-17T00:00:00.000Z"
}

func makeEvent(body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/api/chat",
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

func parseBody[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func newRealHandler(t *testing.T) *Handler {
	t.Helper()
	svc, err := usecase.NewChatService()
	require.NoError(t, err)
	h, err := NewHandler(svc)
	require.NoError(t, err)
	return h
}

func requireSignature(t *testing.T, raw string, kind usecase.SignatureKind) {
	t.Helper()
	sig, err := usecase.ParseSignature(raw)
	require.NoError(t, err)
	require.Equal(t, kind, sig.Kind)
	require.Equal(t, usecase.DefaultBotName, sig.BotName)
	require.WithinDuration(t, time.Now(), sig.At, time.Minute)
}

func TestNewHandler_ValidatesDependency(t *testing.T) {
	_, err := NewHandler(nil)
	require.Error(t, err)
}

func TestHandle_HappyPath(t *testing.T) {
	uc := &stubUseCase{out: usecase.ChatOutput{Response: "BOT SAYS: TEST", Signature: "Processed by Stub @ now"}}
	h, err := NewHandler(uc)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent(`{"message":"test"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `"test"`, string(uc.in.Message))

	out := parseBody[domain.ChatResponse](t, resp.Body)
	require.Equal(t, "BOT SAYS: TEST", out.Response)
	require.Equal(t, "Processed by Stub @ now", out.BackendSignature)
	require.NotEmpty(t, resp.Headers["X-Correlation-Id"])
	require.Equal(t, "application/json", resp.Headers["Content-Type"])
	require.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
}

func TestHandle_ContractScenarios(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		status   int
		response string
		errText  string
	}{
		{name: "greeting", body: `{"message": "Hello there"}`, status: http.StatusOK, response: "Greetings, human! How can I assist you?"},
		{name: "echo", body: `{"message": "test"}`, status: http.StatusOK, response: "BOT SAYS: TEST"},
		{name: "empty message", body: `{"message": ""}`, status: http.StatusBadRequest, errText: usecase.ValidationMessage},
		{name: "missing message", body: `{}`, status: http.StatusBadRequest, errText: usecase.ValidationMessage},
		{name: "upper case hi", body: `{"message": "HI!"}`, status: http.StatusOK, response: "Greetings, human! How can I assist you?"},
		{name: "whitespace message", body: `{"message": "   "}`, status: http.StatusBadRequest, errText: usecase.ValidationMessage},
		{name: "numeric message", body: `{"message": 7}`, status: http.StatusBadRequest, errText: usecase.ValidationMessage},
		{name: "null message", body: `{"message": null}`, status: http.StatusBadRequest, errText: usecase.ValidationMessage},
		{name: "empty body", body: ``, status: http.StatusBadRequest, errText: usecase.ValidationMessage},
		{name: "array body", body: `["hello"]`, status: http.StatusBadRequest, errText: usecase.ValidationMessage},
		{name: "malformed body", body: `{"message":`, status: http.StatusInternalServerError, errText: usecase.InternalMessage},
		{name: "capitalised key", body: `{"Message":"test"}`, status: http.StatusBadRequest, errText: usecase.ValidationMessage},
		{name: "upper case key", body: `{"MESSAGE":"hello"}`, status: http.StatusBadRequest, errText: usecase.ValidationMessage},
		{name: "exact key wins over capitalised", body: `{"message":"hello","Message":42}`, status: http.StatusOK, response: "Greetings, human! How can I assist you?"},
		{name: "null body", body: `null`, status: http.StatusBadRequest, errText: usecase.ValidationMessage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newRealHandler(t)
			resp, err := h.Handle(context.Background(), makeEvent(tc.body))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			if tc.status == http.StatusOK {
				out := parseBody[domain.ChatResponse](t, resp.Body)
				require.Equal(t, tc.response, out.Response)
				requireSignature(t, out.BackendSignature, usecase.SignatureProcessed)
				return
			}

			out := parseBody[domain.ErrorResponse](t, resp.Body)
			require.Equal(t, tc.errText, out.Error)
			requireSignature(t, out.BackendSignature, usecase.SignatureErrorProcessed)
			if tc.status == http.StatusBadRequest {
				require.Empty(t, out.Details)
			} else {
				require.NotEmpty(t, out.Details)
			}
		})
	}
}

func TestHandle_MapsUseCaseErrors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
		details string
	}{
		{name: "validation", err: &usecase.Error{Code: usecase.ErrorValidation, Reason: "empty_message"}, status: http.StatusBadRequest, message: usecase.ValidationMessage},
		{name: "internal", err: usecase.Internal("reply_panic", errors.New("index out of range")), status: http.StatusInternalServerError, message: usecase.InternalMessage, details: "index out of range"},
		{name: "unexpected", err: errors.New("boom"), status: http.StatusInternalServerError, message: usecase.InternalMessage, details: "boom"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &stubUseCase{err: tc.err}
			h, err := NewHandler(uc)
			require.NoError(t, err)

			resp, err := h.Handle(context.Background(), makeEvent(`{"message":"test"}`))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			out := parseBody[domain.ErrorResponse](t, resp.Body)
			require.Equal(t, tc.message, out.Error)
			require.Equal(t, tc.details, out.Details)
			require.Equal(t, "Error processed by Stub @ 2026-10-17T00:00:00.000Z", out.BackendSignature)
		})
	}
}

func TestHandle_UsesProvidedCorrelationID_CaseInsensitive(t *testing.T) {
	uc := &stubUseCase{out: usecase.ChatOutput{Response: "ok", Signature: "sig"}}
	h, err := NewHandler(uc)
	require.NoError(t, err)

	event := makeEvent(`{"message":"test"}`)
	event.Headers["x-correlation-id"] = "corr-123"
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "corr-123", resp.Headers["X-Correlation-Id"])
}

func TestHandle_GeneratesCorrelationID(t *testing.T) {
	orig := newUUID
	newUUID = func() string { return "generated-id" }
	t.Cleanup(func() { newUUID = orig })

	h, err := NewHandler(&stubUseCase{})
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent(`{"message":"test"}`))
	require.NoError(t, err)
	require.Equal(t, "generated-id", resp.Headers["X-Correlation-Id"])
}

func TestHandle_Base64Body(t *testing.T) {
	h := newRealHandler(t)

	event := makeEvent(base64.StdEncoding.EncodeToString([]byte(`{"message":"test"}`)))
	event.IsBase64Encoded = true
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "BOT SAYS: TEST", parseBody[domain.ChatResponse](t, resp.Body).Response)

	event = makeEvent("%%%not-base64%%%")
	event.IsBase64Encoded = true
	resp, err = h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHandle_Methods(t *testing.T) {
	uc := &stubUseCase{}
	h, err := NewHandler(uc, WithAllowedOrigin("https://chat.example.com"))
	require.NoError(t, err)

	event := makeEvent("")
	event.HTTPMethod = http.MethodOptions
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Empty(t, resp.Body)
	require.Equal(t, "https://chat.example.com", resp.Headers["Access-Control-Allow-Origin"])

	event.HTTPMethod = http.MethodGet
	resp, err = h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	require.Equal(t, "POST, OPTIONS", resp.Headers["Allow"])
	out := parseBody[domain.ErrorResponse](t, resp.Body)
	require.Equal(t, "Method Not Allowed", out.Error)
	require.Contains(t, out.BackendSignature, "Error processed by")

	event = makeEvent(`{"message":"test"}`)
	event.HTTPMethod = ""
	uc.out = usecase.ChatOutput{Response: "BOT SAYS: TEST", Signature: "sig"}
	resp, err = h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandle_RepeatedRequestKeepsResponse(t *testing.T) {
	h := newRealHandler(t)

	first, err := h.Handle(context.Background(), makeEvent(`{"message":"same input"}`))
	require.NoError(t, err)
	second, err := h.Handle(context.Background(), makeEvent(`{"message":"same input"}`))
	require.NoError(t, err)

	require.Equal(t,
		parseBody[domain.ChatResponse](t, first.Body).Response,
		parseBody[domain.ChatResponse](t, second.Body).Response,
	)
}

func TestDecodeRequest(t *testing.T) {
	req, err := decodeRequest([]byte(`  {"message":"hi","extra":1}  `))
	require.NoError(t, err)
	require.JSONEq(t, `"hi"`, string(req.Message))

	req, err = decodeRequest([]byte(`{"Message":"hi"}`))
	require.NoError(t, err)
	require.Empty(t, req.Message)

	req, err = decodeRequest([]byte(`"just a string"`))
	require.NoError(t, err)
	require.Empty(t, req.Message)

	_, err = decodeRequest([]byte(`{"message":"hi"`))
	require.Error(t, err)
}
