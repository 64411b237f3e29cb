package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	merchantApplication "github.com/rcarvalho-pb/paywave-go/internal/application/merchant"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/merchant"
)

type MerchantQueries interface {
	Balance(ctx context.Context, merchantID string) (merchantApplication.Balance, error)
	History(ctx context.Context, merchantID string, page, limit int) (merchantApplication.Page[merchant.HistoryEntry], error)
	Notifications(ctx context.Context, merchantID string, page, limit int) (merchantApplication.Page[merchant.Notification], error)
}

type MerchantHandler struct {
	Service MerchantQueries
}

func (h *MerchantHandler) Balance(w http.ResponseWriter, r *http.Request) {
	b, err := h.Service.Balance(r.Context(), MerchantID(r.Context()))
	if err != nil {
		writeMerchantError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, b)
}

func (h *MerchantHandler) History(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	p, err := h.Service.History(r.Context(), MerchantID(r.Context()), page, limit)
	if err != nil {
		writeMerchantError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, p)
}

func (h *MerchantHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	p, err := h.Service.Notifications(r.Context(), MerchantID(r.Context()), page, limit)
	if err != nil {
		writeMerchantError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, p)
}

// pageParams returns zero for absent or invalid values; the service applies
// the defaults.
func pageParams(r *http.Request) (int, int) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return page, limit
}

func writeMerchantError(w http.ResponseWriter, err error) {
	if errors.Is(err, merchant.ErrMerchantNotFound) {
		WriteError(w, http.StatusNotFound, "not_found", "Merchant not found")
		return
	}
	WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}
