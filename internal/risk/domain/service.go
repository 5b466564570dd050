package domain

import "context"

// Service ranks customers by their overdue exposure.
type Service interface {
	TopCustomers(ctx context.Context, mode RankMode, top int) ([]CustomerRisk, error)
}
