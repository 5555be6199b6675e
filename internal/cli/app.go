package cli

import (
	"context"
	"database/sql"
	"fmt"

	"billing/internal/config"
	"billing/internal/db"
	"billing/internal/domain"
	"billing/internal/ledger"
	"billing/internal/logger"
	"billing/internal/mirror"
	"billing/internal/repository"
	"billing/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type app struct {
	cfg  config.Config
	conn *sql.DB
	svc  *service.Service
	log  zerolog.Logger
}

func (a *app) open(ctx context.Context, cfg config.Config) error {
	a.cfg = cfg
	a.log = logger.WithComponent("app")

	conn, dialect, err := db.Open(ctx, cfg.DatabaseURL, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if err := db.RunMigrations(ctx, conn, dialect, logger.WithComponent("migrate")); err != nil {
		conn.Close()
		return fmt.Errorf("migration error: %w", err)
	}

	repo := repository.New(conn, dialect)
	m := mirror.New()
	if err := m.Reload(ctx, repo); err != nil {
		conn.Close()
		return err
	}
	engine := ledger.New(repo, m, logger.WithComponent("ledger"))

	a.conn = conn
	a.svc = service.New(engine, repo, cfg.CurrencySymbol)
	a.log.Debug().
		Str("dialect", string(dialect)).
		Int("items", len(m.Items())).
		Msg("store opened")
	return nil
}

func (a *app) Close() error {
	if a.conn == nil {
		return nil
	}
	err := a.conn.Close()
	a.conn = nil
	return err
}

func (a *app) money(amount decimal.Decimal) string {
	return domain.FormatMoney(a.cfg.CurrencySymbol, amount)
}
