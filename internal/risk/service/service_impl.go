package service

import (
	"context"
	"sort"
	"strings"

	"github.com/smallledger/arview/internal/clock"
	invoicedomain "github.com/smallledger/arview/internal/invoice/domain"
	riskdomain "github.com/smallledger/arview/internal/risk/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ratioScale is the fixed precision of the overdue ratio.
const ratioScale = 6

// placeholderName stands in for invoices with no customer name so they
// still group together instead of vanishing from the ranking.
const placeholderName = "-"

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

func NewService(p ServiceParam) riskdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("risk.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) TopCustomers(ctx context.Context, mode riskdomain.RankMode, top int) ([]riskdomain.CustomerRisk, error) {
	candidates, err := s.repo.OverdueCandidates(ctx, s.db)
	if err != nil {
		return nil, err
	}

	today := clock.Today(s.clock)
	groups := make(map[string]*riskdomain.CustomerRisk)
	for _, inv := range candidates {
		if !invoicedomain.IsOverdue(inv, today) {
			continue
		}
		name := strings.TrimSpace(inv.CustomerName)
		if name == "" {
			name = placeholderName
		}
		g, ok := groups[name]
		if !ok {
			g = &riskdomain.CustomerRisk{CustomerName: name}
			groups[name] = g
		}
		g.InvoiceCount++
		g.TotalBilled = g.TotalBilled.Add(inv.TotalAmt)
		g.OverdueAmount = g.OverdueAmount.Add(inv.Balance)
		if days := invoicedomain.OverdueDays(inv, today); days > g.MaxDaysPastDue {
			g.MaxDaysPastDue = days
		}
	}

	risks := make([]riskdomain.CustomerRisk, 0, len(groups))
	for _, g := range groups {
		if g.TotalBilled.Sign() != 0 {
			g.OverdueRatio = g.OverdueAmount.DivRound(g.TotalBilled, ratioScale)
		}
		risks = append(risks, *g)
	}

	sort.Slice(risks, rankLess(risks, mode))

	if top < len(risks) {
		risks = risks[:top]
	}
	return risks, nil
}

// rankLess composes the mode's primary key with its documented tie-break
// keys. Every mode falls back to ascending customer name last, which keeps
// the ordering total and the output stable across requests.
func rankLess(risks []riskdomain.CustomerRisk, mode riskdomain.RankMode) func(i, j int) bool {
	return func(i, j int) bool {
		a, b := risks[i], risks[j]
		switch mode {
		case riskdomain.RankByMaxDays:
			if a.MaxDaysPastDue != b.MaxDaysPastDue {
				return a.MaxDaysPastDue > b.MaxDaysPastDue
			}
		case riskdomain.RankByRatio:
			if cmp := a.OverdueRatio.Cmp(b.OverdueRatio); cmp != 0 {
				return cmp > 0
			}
		}
		if cmp := a.OverdueAmount.Cmp(b.OverdueAmount); cmp != 0 {
			return cmp > 0
		}
		return a.CustomerName < b.CustomerName
	}
}
