package event

type SettlementPayload struct {
	Reference  string `json:"reference"`
	Kind       string `json:"kind"`
	MerchantID string `json:"merchant_id"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	Status     string `json:"status"`
	Direction  string `json:"direction"`
}

type PayoutFailedPayload struct {
	Reference       string `json:"reference"`
	PayoutReference string `json:"payout_reference"`
	MerchantID      string `json:"merchant_id"`
	Amount          int64  `json:"amount"`
	Reason          string `json:"reason"`
}
