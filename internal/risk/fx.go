package risk

import (
	"github.com/smallledger/arview/internal/risk/service"
	"go.uber.org/fx"
)

var Module = fx.Module("risk",
	fx.Provide(service.NewService),
)
