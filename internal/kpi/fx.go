package kpi

import (
	"github.com/smallledger/arview/internal/kpi/service"
	"go.uber.org/fx"
)

var Module = fx.Module("kpi",
	fx.Provide(service.NewService),
)
