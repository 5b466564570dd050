package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallledger/arview/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Creator domain.InvoiceCreator
}

type CreateService struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	creator domain.InvoiceCreator
}

func NewCreateService(p CreateServiceParam) domain.CreateService {
	return &CreateService{
		db:      p.DB,
		log:     p.Log.Named("invoice.create"),
		genID:   p.GenID,
		repo:    p.Repo,
		creator: p.Creator,
	}
}

// Create writes the invoice upstream first, then mirrors the stored record
// locally so it shows up without waiting for the next sync.
func (s *CreateService) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	if req.Amount.Sign() <= 0 {
		return domain.Invoice{}, domain.ErrInvalidAmount
	}
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.ItemName = strings.TrimSpace(req.ItemName)

	raw, err := s.creator.CreateInvoice(ctx, req)
	if err != nil {
		return domain.Invoice{}, err
	}

	// A freshly created invoice is always OPEN; the next sync re-derives
	// the status from upstream state.
	inv := domain.Invoice{
		ID:           s.genID.Generate(),
		QboID:        raw.ExternalID,
		CustomerName: raw.CustomerName,
		Status:       domain.StatusOpen,
		TotalAmt:     raw.TotalAmt,
		Balance:      raw.Balance,
		TxnDate:      normalizeDate(raw.TxnDate),
		DueDate:      normalizeDate(raw.DueDate),
	}
	if err := s.repo.Save(ctx, s.db, &inv); err != nil {
		return domain.Invoice{}, err
	}

	s.log.Info("invoice created",
		zap.String("qbo_id", inv.QboID),
		zap.String("customer_name", inv.CustomerName))
	return inv, nil
}
