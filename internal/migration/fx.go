package migration

import (
	"github.com/smallledger/arview/internal/clock"
	"github.com/smallledger/arview/internal/config"
	invoicedomain "github.com/smallledger/arview/internal/invoice/domain"
	"github.com/smallledger/arview/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, c clock.Clock) error {
		// Versioned migrations target Postgres; the other dialects
		// (sqlite for local dev, mysql) get the gorm auto-migration.
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else if err := conn.AutoMigrate(&invoicedomain.Invoice{}); err != nil {
			return err
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoInvoices(conn, c)
		}
		return nil
	}),
)
