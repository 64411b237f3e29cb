package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/rcarvalho-pb/paywave-go/internal/application/reconcile"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/webhook"
)

const maxWebhookBody = 1 << 20

type WebhookProcessor interface {
	Process(ctx context.Context, body []byte, signature string) (reconcile.Result, error)
}

type WebhookHandler struct {
	Processor       WebhookProcessor
	SignatureHeader string
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	res, err := h.Processor.Process(r.Context(), body, r.Header.Get(h.SignatureHeader))
	switch {
	case err == nil:
		WriteSuccess(w, http.StatusOK, MessageResponse{Message: res.Message()})
	case errors.Is(err, webhook.ErrMissingSignature):
		WriteError(w, http.StatusBadRequest, "missing_signature", "Missing signature")
	case errors.Is(err, webhook.ErrInvalidSignature):
		WriteError(w, http.StatusBadRequest, "invalid_signature", "Invalid signature")
	case errors.Is(err, webhook.ErrMalformedEvent):
		WriteError(w, http.StatusBadRequest, "malformed_event", "Malformed webhook payload")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}
