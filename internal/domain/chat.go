package domain

import "encoding/json"

// ChatRequest is the wire shape posted to the chat endpoint. Message is kept
// raw so that a non-string value can be told apart from a missing one.
type ChatRequest struct {
	Message json.RawMessage `json:"message"`
}

// ChatResponse is the success body of the chat endpoint.
type ChatResponse struct {
	Response         string `json:"response"`
	BackendSignature string `json:"backendSignature"`
}

// ErrorResponse is the failure body of the chat endpoint.
type ErrorResponse struct {
	Error            string `json:"error"`
	BackendSignature string `json:"backendSignature,omitempty"`
	Details          string `json:"details,omitempty"`
}
