package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rcarvalho-pb/paywave-go/internal/infra/metrics"
)

type Handlers struct {
	Webhook    *WebhookHandler
	Merchant   *MerchantHandler
	Withdrawal *WithdrawalHandler
	Auth       *Authenticator
	Metrics    *metrics.Counters
}

func NewRouter(h Handlers) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		body := map[string]any{"status": "ok"}
		if h.Metrics != nil {
			body["counters"] = h.Metrics.Snapshot()
		}
		WriteSuccess(w, http.StatusOK, body)
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/webhook", h.Webhook.Handle).Methods(http.MethodPost)

	private := api.NewRoute().Subrouter()
	private.Use(h.Auth.Middleware)
	private.HandleFunc("/merchants/me/balance", h.Merchant.Balance).Methods(http.MethodGet)
	private.HandleFunc("/merchants/me/history", h.Merchant.History).Methods(http.MethodGet)
	private.HandleFunc("/merchants/me/notifications", h.Merchant.Notifications).Methods(http.MethodGet)
	private.HandleFunc("/withdrawals", h.Withdrawal.Create).Methods(http.MethodPost)

	return r
}
