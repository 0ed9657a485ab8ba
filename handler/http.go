package handler

import (
	"io"
	"net/http"
	"strings"

	"chat-demo/internal/usecase"
)

// maxBodyBytes caps request bodies read by ServeHTTP.
const maxBodyBytes = 1 << 20

// ServeHTTP adapts the handler to net/http.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	corrID := correlationID(flattenHeaders(r.Header))

	var res response
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		res = h.fail(ctx, corrID, usecase.Internal("read_body", err))
	} else {
		res = h.serve(ctx, r.Method, body, corrID)
	}

	for k, v := range res.headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(res.status)
	if len(res.body) > 0 {
		_, _ = w.Write(res.body)
	}
}

func flattenHeaders(header http.Header) map[string]string {
	out := make(map[string]string, len(header))
	for k, v := range header {
		out[k] = strings.Join(v, ",")
	}
	return out
}
