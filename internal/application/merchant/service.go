package merchant

import (
	"context"

	domainMerchant "github.com/rcarvalho-pb/paywave-go/internal/domain/merchant"
)

type Page[T any] struct {
	Data       []T                       `json:"data"`
	Pagination domainMerchant.Pagination `json:"pagination"`
}

type Balance struct {
	MerchantID string `json:"merchantId"`
	Balance    int64  `json:"balance"`
}

// Service answers ledger queries for the authenticated merchant.
type Service struct {
	Repo domainMerchant.Repository
}

func (s *Service) Balance(ctx context.Context, merchantID string) (Balance, error) {
	m, err := s.Repo.FindByID(ctx, merchantID)
	if err != nil {
		return Balance{}, err
	}
	return Balance{MerchantID: m.ID, Balance: m.Balance}, nil
}

func (s *Service) History(ctx context.Context, merchantID string, number, limit int) (Page[domainMerchant.HistoryEntry], error) {
	page := domainMerchant.NewPage(number, limit)

	entries, total, err := s.Repo.History(ctx, merchantID, page)
	if err != nil {
		return Page[domainMerchant.HistoryEntry]{}, err
	}

	return Page[domainMerchant.HistoryEntry]{Data: entries, Pagination: page.Paginate(total)}, nil
}

func (s *Service) Notifications(ctx context.Context, merchantID string, number, limit int) (Page[domainMerchant.Notification], error) {
	page := domainMerchant.NewPage(number, limit)

	notes, total, err := s.Repo.Notifications(ctx, merchantID, page)
	if err != nil {
		return Page[domainMerchant.Notification]{}, err
	}

	return Page[domainMerchant.Notification]{Data: notes, Pagination: page.Paginate(total)}, nil
}
