package service

import (
	"context"
	"sort"
	"time"

	"github.com/smallledger/arview/internal/clock"
	invoicedomain "github.com/smallledger/arview/internal/invoice/domain"
	kpidomain "github.com/smallledger/arview/internal/kpi/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  invoicedomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  invoicedomain.Repository
}

func NewService(p ServiceParam) kpidomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("kpi.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) OverdueByDueDate(ctx context.Context, req kpidomain.OverdueByDueDateRequest) ([]kpidomain.OverdueBucket, error) {
	if req.To.Before(req.From) {
		return nil, kpidomain.ErrInvalidWindow
	}

	candidates, err := s.repo.OverdueCandidates(ctx, s.db)
	if err != nil {
		return nil, err
	}

	today := clock.Today(s.clock)
	from := clock.DateOf(req.From)
	to := clock.DateOf(req.To)

	type acc struct {
		bucket kpidomain.OverdueBucket
		date   time.Time
	}
	groups := make(map[time.Time]*acc)
	for _, inv := range candidates {
		if !invoicedomain.IsOverdue(inv, today) {
			continue
		}
		// Window membership is checked against the raw due date; only
		// bucketing collapses to the week start.
		due := *inv.DueDate
		if due.Before(from) || due.After(to) {
			continue
		}
		key := due
		if req.Granularity == kpidomain.GranularityWeek {
			key = weekStart(due)
		}
		g, ok := groups[key]
		if !ok {
			g = &acc{
				bucket: kpidomain.OverdueBucket{BucketDate: key.Format(dateLayout)},
				date:   key,
			}
			groups[key] = g
		}
		g.bucket.Amount = g.bucket.Amount.Add(inv.Balance)
		g.bucket.Count++
	}

	ordered := make([]*acc, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].date.Before(ordered[j].date)
	})

	buckets := make([]kpidomain.OverdueBucket, 0, len(ordered))
	for _, g := range ordered {
		buckets = append(buckets, g.bucket)
	}
	return buckets, nil
}

// weekStart returns the Monday of the date's ISO week.
func weekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
