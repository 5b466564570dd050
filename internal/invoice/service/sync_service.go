package service

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallledger/arview/internal/clock"
	"github.com/smallledger/arview/internal/invoice/domain"
	"github.com/smallledger/arview/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SyncServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Source  domain.InvoiceSource
	Metrics *metrics.Metrics
}

type SyncService struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	source  domain.InvoiceSource
	metrics *metrics.Metrics

	// mu serializes sync runs so concurrent triggers cannot interleave
	// upserts for the same external invoice.
	mu sync.Mutex
}

func NewSyncService(p SyncServiceParam) domain.SyncService {
	return &SyncService{
		db:      p.DB,
		log:     p.Log.Named("invoice.sync"),
		genID:   p.GenID,
		repo:    p.Repo,
		source:  p.Source,
		metrics: p.Metrics,
	}
}

func (s *SyncService) Sync(ctx context.Context, batch int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raws, err := s.source.FetchInvoices(ctx, batch)
	if err != nil {
		return 0, err
	}

	upserted := 0
	for _, raw := range raws {
		if raw.ExternalID == "" {
			s.log.Warn("skipping invoice without external id",
				zap.String("customer_name", raw.CustomerName))
			continue
		}
		if err := s.upsert(ctx, raw); err != nil {
			return upserted, err
		}
		upserted++
	}

	s.metrics.RecordSyncRun(ctx, upserted)
	s.log.Info("invoice sync completed",
		zap.Int("fetched", len(raws)),
		zap.Int("upserted", upserted))
	return upserted, nil
}

func (s *SyncService) upsert(ctx context.Context, raw domain.RawInvoice) error {
	existing, err := s.repo.FindByQboID(ctx, s.db, raw.ExternalID)
	if err != nil {
		return err
	}

	inv := existing
	if inv == nil {
		inv = &domain.Invoice{
			ID:    s.genID.Generate(),
			QboID: raw.ExternalID,
		}
	}
	inv.CustomerName = raw.CustomerName
	inv.TotalAmt = raw.TotalAmt
	inv.Balance = raw.Balance
	inv.TxnDate = normalizeDate(raw.TxnDate)
	inv.DueDate = normalizeDate(raw.DueDate)
	inv.Status = domain.DeriveStatus(raw.TxnStatus, raw.TotalAmt, raw.Balance)

	return s.repo.Save(ctx, s.db, inv)
}

func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := clock.DateOf(*t)
	return &d
}
