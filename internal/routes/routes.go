package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/switchbank/switch-ledger/internal/account"
	"github.com/switchbank/switch-ledger/internal/config"
	"github.com/switchbank/switch-ledger/internal/funding"
	"github.com/switchbank/switch-ledger/internal/integrity"
	"github.com/switchbank/switch-ledger/internal/ledger"
	"github.com/switchbank/switch-ledger/internal/middleware"
	"github.com/switchbank/switch-ledger/internal/movement"
	"github.com/switchbank/switch-ledger/internal/store"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Backing store: Postgres when configured, in-memory in dev.
	var st store.Store
	if d.DB != nil {
		st = store.NewPostgres(d.DB)
	} else {
		st = store.NewMemory(account.NewMemoryRepository(), movement.NewMemoryJournal())
	}

	signer := integrity.NewSigner(d.Cfg.LedgerSecret)
	ledgerSvc := ledger.NewService(st, signer, d.Logger, d.Cfg.ReversalWindow)
	fundingSvc, err := funding.NewService(ledgerSvc)
	if err != nil {
		return err
	}

	ledgerHandler := ledger.NewHandler(ledgerSvc)
	fundingHandler := funding.NewHandler(fundingSvc)

	api := app.Group("/api/v1")
	RegisterLedgerRoutes(api, ledgerHandler)
	RegisterFundingRoutes(api, fundingHandler)

	return nil
}
