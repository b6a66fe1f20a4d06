// @title           Inventario Ledger API
// @version         1.0
// @description     Libro de movimientos de inventario con historial inmutable.
// @BasePath        /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Bearer token JWT (Authorization: Bearer <token>)
package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	_ "github.com/jhoicas/inventario-ledger/docs"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/inventario-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/inventario-ledger/internal/infrastructure/redis"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/sqlite"
	httpRouter "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
	"github.com/jhoicas/inventario-ledger/pkg/observability"
)

// backend agrupa los repositorios de lectura y el runner transaccional de un driver.
type backend struct {
	items     repository.ItemRepository
	movements repository.MovementRepository
	history   repository.HistoryRepository
	txRunner  inventory.TxRunner
	close     func()
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	switch cfg.DB.Driver {
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.DB.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.DB.SQLitePath).Msg("usando SQLite embebido")
		return &backend{
			items:     sqlite.NewItemRepository(db),
			movements: sqlite.NewMovementRepository(db),
			history:   sqlite.NewHistoryRepository(db),
			txRunner:  sqlite.NewTxRunner(db, cfg.Ledger.LockTimeout),
			close:     func() { _ = db.Close() },
		}, nil
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return &backend{
			items:     postgres.NewItemRepository(pool),
			movements: postgres.NewMovementRepository(pool),
			history:   postgres.NewHistoryRepository(pool),
			txRunner:  postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout),
			close:     pool.Close,
		}, nil
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.App, cfg.OTel, log)
	if err != nil {
		log.Warn().Err(err).Msg("tracing deshabilitado")
	}

	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir base de datos")
	}
	defer be.close()

	opts := []inventory.LedgerOption{inventory.WithLogger(log)}

	var ledgerMetrics *metrics.LedgerMetrics
	if cfg.Metrics.Enabled {
		ledgerMetrics = metrics.NewLedgerMetrics("inventario")
		opts = append(opts, inventory.WithMetrics(ledgerMetrics))
	}

	if cfg.Redis.Addr != "" {
		client, err := infraredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Msg("Redis no disponible, Idempotency-Key deshabilitado")
		} else {
			defer func() { _ = client.Close() }()
			opts = append(opts, inventory.WithIdempotency(infraredis.NewIdempotencyStore(client, cfg.Redis.IdempotencyTTL)))
		}
	}

	ledgerUC := inventory.NewLedgerUseCase(be.txRunner, be.items, be.movements, be.history, opts...)
	reportUC := inventory.NewReportUseCase(be.txRunner, infrapdf.NewMarotoPDFGenerator(), log)
	itemUC := usecase.NewItemUseCase(be.txRunner, be.items)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})

	deps := httpRouter.RouterDeps{
		ItemUC:      itemUC,
		Ledger:      ledgerUC,
		Reports:     reportUC,
		JWTSecret:   cfg.JWT.Secret,
		Logger:      log,
		SwaggerFile: "./docs/swagger.json",
	}
	if ledgerMetrics != nil {
		deps.Metrics = ledgerMetrics.Handler()
	}
	httpRouter.Router(app, deps)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			return fmt.Errorf("servidor HTTP: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("apagado del servidor: %w", err)
		}
		if shutdownTracing != nil {
			if err := shutdownTracing(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("cerrar exportador de trazas")
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("aplicación finalizada con error")
	}
	log.Info().Msg("aplicación detenida")
}
