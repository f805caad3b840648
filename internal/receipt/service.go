package receipt

import (
	"context"
	"fmt"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=receipt
type Repository interface {
	CreateReceipt(ctx context.Context, r *Receipt) error
	GetReceipt(ctx context.Context, id int64) (*Receipt, error)
	ListReceipts(ctx context.Context) ([]*Receipt, error)
	UpdateReceipt(ctx context.Context, r *Receipt) error
	DeleteReceipt(ctx context.Context, id int64) error

	CreateReceipts(ctx context.Context, rs []*Receipt) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create inserts a new receipt. actorID is the authenticated caller, if
// any; it is recorded as the filled_by reference.
func (s *Service) Create(ctx context.Context, params CreateParams, actorID *int64) (*Receipt, error) {
	r := fromCreateParams(params)
	r.FilledBy = actorID

	if err := s.repo.CreateReceipt(ctx, r); err != nil {
		return nil, err
	}

	// Re-read so the response carries the joined usernames.
	return s.repo.GetReceipt(ctx, r.ID)
}

// List returns every receipt, newest first.
func (s *Service) List(ctx context.Context) ([]*Receipt, error) {
	return s.repo.ListReceipts(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Receipt, error) {
	return s.repo.GetReceipt(ctx, id)
}

// Update applies the restricted field set to an existing receipt and
// records the caller as updated_by. Fields left nil in params are kept.
func (s *Service) Update(ctx context.Context, id int64, params UpdateParams, actorID int64) (*Receipt, error) {
	r, err := s.repo.GetReceipt(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		r.Name = *params.Name
	}

	if params.GrossWeight != nil {
		r.GrossWeight = *params.GrossWeight
	}

	if params.NetWeight != nil {
		r.NetWeight = *params.NetWeight
	}

	if params.Type != nil {
		r.Type = *params.Type
	}

	if params.Image1 != nil {
		r.Image1 = *params.Image1
	}

	if params.Image2 != nil {
		r.Image2 = *params.Image2
	}

	r.UpdatedBy = &actorID

	if err := s.repo.UpdateReceipt(ctx, r); err != nil {
		return nil, err
	}

	return s.repo.GetReceipt(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteReceipt(ctx, id)
}

// CreateBatch inserts a set of receipts in a single transaction,
// attributing all of them to the acting user. Used by the CSV import.
func (s *Service) CreateBatch(ctx context.Context, params []CreateParams, actorID *int64) ([]*Receipt, error) {
	if len(params) == 0 {
		return nil, nil
	}

	rs := make([]*Receipt, len(params))
	for i, p := range params {
		rs[i] = fromCreateParams(p)
		rs[i].FilledBy = actorID
	}

	if err := s.repo.CreateReceipts(ctx, rs); err != nil {
		return nil, fmt.Errorf("create receipts: %w", err)
	}

	return rs, nil
}

func fromCreateParams(p CreateParams) *Receipt {
	return &Receipt{
		AccountHead:   p.AccountHead,
		AccountNumber: p.AccountNumber,
		ReceiptNumber: p.ReceiptNumber,
		Type:          p.Type,
		Name:          p.Name,
		Address1:      p.Address1,
		Address2:      p.Address2,
		Taluka:        p.Taluka,
		District:      p.District,
		PinCode:       p.PinCode,
		State:         p.State,
		Mobile:        p.Mobile,
		Gotra:         p.Gotra,
		GrossWeight:   p.GrossWeight,
		NetWeight:     p.NetWeight,
		Goods:         p.Goods,
		Image1:        p.Image1,
		Image2:        p.Image2,
	}
}
