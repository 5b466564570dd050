package invoice

import (
	"github.com/smallledger/arview/internal/invoice/repository"
	"github.com/smallledger/arview/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewQueryService),
	fx.Provide(service.NewSyncService),
	fx.Provide(service.NewCreateService),
)
