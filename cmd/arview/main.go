package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallledger/arview/internal/clock"
	"github.com/smallledger/arview/internal/config"
	"github.com/smallledger/arview/internal/invoice"
	"github.com/smallledger/arview/internal/kpi"
	"github.com/smallledger/arview/internal/migration"
	"github.com/smallledger/arview/internal/observability"
	"github.com/smallledger/arview/internal/qbo"
	"github.com/smallledger/arview/internal/risk"
	"github.com/smallledger/arview/internal/server"
	"github.com/smallledger/arview/pkg/db"
	"go.uber.org/fx"
)

func main() {
	// Amounts serialize as JSON numbers, matching what the frontend and
	// the QBO API exchange.
	decimal.MarshalJSONWithoutQuotes = true

	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		qbo.Module,
		invoice.Module,
		risk.Module,
		kpi.Module,
		migration.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
