package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/smallledger/arview/internal/clock"
	"github.com/smallledger/arview/internal/invoice/domain"
	"github.com/smallledger/arview/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QueryServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type QueryService struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func NewQueryService(p QueryServiceParam) domain.QueryService {
	return &QueryService{
		db:    p.DB,
		log:   p.Log.Named("invoice.query"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *QueryService) PageViews(ctx context.Context, req domain.PageViewsRequest) (pagination.Page[domain.InvoiceView], error) {
	if err := req.Validate(); err != nil {
		return pagination.Page[domain.InvoiceView]{}, err
	}

	filter := domain.PageFilter{
		Status: strings.TrimSpace(req.Status),
		Query:  strings.TrimSpace(req.Query),
	}
	invoices, total, err := s.repo.Page(ctx, s.db, filter, req.Pagination)
	if err != nil {
		return pagination.Page[domain.InvoiceView]{}, err
	}

	today := clock.Today(s.clock)
	views := make([]domain.InvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		views = append(views, domain.NewInvoiceView(inv, today))
	}
	return pagination.NewPage(views, total, req.Pagination), nil
}

// PageOverdue paginates overdue invoices in memory. Overdue membership
// depends on today's date, so the filter cannot be pushed into SQL without
// re-deriving the bucket boundaries per dialect; the candidate set
// (positive balance, due date present) keeps the scan bounded.
func (s *QueryService) PageOverdue(ctx context.Context, req domain.PageOverdueRequest) (pagination.Page[domain.InvoiceView], error) {
	if err := req.Validate(); err != nil {
		return pagination.Page[domain.InvoiceView]{}, err
	}

	candidates, err := s.repo.OverdueCandidates(ctx, s.db)
	if err != nil {
		return pagination.Page[domain.InvoiceView]{}, err
	}

	today := clock.Today(s.clock)
	bucket := strings.TrimSpace(req.Bucket)
	query := strings.ToLower(strings.TrimSpace(req.Query))

	overdue := make([]domain.Invoice, 0, len(candidates))
	for _, inv := range candidates {
		if !domain.IsOverdue(inv, today) {
			continue
		}
		if bucket != "" && domain.AgingBucket(inv, today) != bucket {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(inv.CustomerName), query) {
			continue
		}
		overdue = append(overdue, inv)
	}

	sort.Slice(overdue, func(i, j int) bool {
		a, b := overdue[i], overdue[j]
		if !a.DueDate.Equal(*b.DueDate) {
			return a.DueDate.Before(*b.DueDate)
		}
		return a.ID < b.ID
	})

	views := make([]domain.InvoiceView, 0, len(overdue))
	for _, inv := range overdue {
		views = append(views, domain.NewInvoiceView(inv, today))
	}
	return pagination.Slice(views, req.Pagination), nil
}

// Aging buckets every invoice with a positive balance, including the
// not-yet-overdue ones. Bucket presence is data-driven: buckets with no
// rows are omitted, unlike OverdueAging.
func (s *QueryService) Aging(ctx context.Context) ([]domain.BucketTotal, error) {
	invoices, err := s.repo.WithPositiveBalance(ctx, s.db)
	if err != nil {
		return nil, err
	}

	order := append([]string{domain.BucketNotOverdue}, domain.OverdueBuckets...)
	all := bucketize(invoices, clock.Today(s.clock), order)
	present := make([]domain.BucketTotal, 0, len(all))
	for _, t := range all {
		if t.Count > 0 {
			present = append(present, t)
		}
	}
	return present, nil
}

// OverdueAging buckets only the overdue invoices. The five overdue buckets
// are always present and ordered, zero-filled when empty.
func (s *QueryService) OverdueAging(ctx context.Context) ([]domain.BucketTotal, error) {
	candidates, err := s.repo.OverdueCandidates(ctx, s.db)
	if err != nil {
		return nil, err
	}

	today := clock.Today(s.clock)
	overdue := make([]domain.Invoice, 0, len(candidates))
	for _, inv := range candidates {
		if domain.IsOverdue(inv, today) {
			overdue = append(overdue, inv)
		}
	}
	return bucketize(overdue, today, domain.OverdueBuckets), nil
}

func (s *QueryService) Summary(ctx context.Context) (domain.SummaryView, error) {
	aggregates, err := s.repo.AggregateByStatus(ctx, s.db)
	if err != nil {
		return domain.SummaryView{}, err
	}

	// Totals cover OPEN, PARTIAL_PAID and PAID only. VOID and UNKNOWN rows
	// are counted nowhere in the summary.
	var summary domain.SummaryView
	for _, agg := range aggregates {
		switch agg.Status {
		case domain.StatusOpen:
			summary.OpenCount = agg.Count
			summary.OpenAmount = agg.Amount
		case domain.StatusPartialPaid:
			summary.PartialCount = agg.Count
			summary.PartialAmount = agg.Amount
		case domain.StatusPaid:
			summary.PaidCount = agg.Count
			summary.PaidAmount = agg.Amount
		default:
			continue
		}
		summary.TotalCount += agg.Count
		summary.TotalAmount = summary.TotalAmount.Add(agg.Amount)
	}

	overdueCount, err := s.repo.OverdueCount(ctx, s.db, clock.Today(s.clock))
	if err != nil {
		return domain.SummaryView{}, err
	}
	summary.OverdueCount = overdueCount
	return summary, nil
}

func bucketize(invoices []domain.Invoice, today time.Time, order []string) []domain.BucketTotal {
	totals := make(map[string]*domain.BucketTotal, len(order))
	result := make([]domain.BucketTotal, len(order))
	for i, bucket := range order {
		result[i] = domain.BucketTotal{Bucket: bucket}
		totals[bucket] = &result[i]
	}
	for _, inv := range invoices {
		t, ok := totals[domain.AgingBucket(inv, today)]
		if !ok {
			continue
		}
		t.Count++
		t.Amount = t.Amount.Add(inv.Balance)
	}
	return result
}
