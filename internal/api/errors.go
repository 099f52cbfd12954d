package api

import (
	"context"
	"encoding/json"
	"net/http"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/containerd/log"

	"github.com/roach88/sieve/internal/ir"
)

// errorResponse is the JSON body of a failed request.
type errorResponse struct {
	Message  string `json:"message"`
	Code     string `json:"code,omitempty"`
	Property string `json:"property,omitempty"`
}

// statusFromError maps an error to its HTTP status.
// Invalid arguments (every query error among them) are the client's fault.
func statusFromError(err error) int {
	switch {
	case cerrdefs.IsInvalidArgument(err):
		return http.StatusBadRequest
	case cerrdefs.IsNotFound(err):
		return http.StatusNotFound
	case cerrdefs.IsCanceled(err), cerrdefs.IsDeadlineExceeded(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and writes its JSON response.
// Server-side failures hide their message from the client.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFromError(err)
	resp := errorResponse{Message: err.Error()}
	if qe, ok := ir.AsQueryError(err); ok {
		resp.Message = qe.Message
		resp.Code = string(qe.Code)
		resp.Property = qe.Property
	}

	if status >= http.StatusInternalServerError {
		log.G(ctx).WithError(err).Error("request failed")
		resp = errorResponse{Message: http.StatusText(status)}
	} else {
		log.G(ctx).WithError(err).Debug("request rejected")
	}

	writeJSON(ctx, w, status, resp)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.G(ctx).WithError(err).Warn("failed to write response")
	}
}
