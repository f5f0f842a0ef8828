package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appsales "github.com/jhoicas/pos-ventas-api/internal/application/sales"
	"github.com/jhoicas/pos-ventas-api/internal/domain/repository"
	"github.com/jhoicas/pos-ventas-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/pos-ventas-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pos-ventas-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/pos-ventas-api/internal/infrastructure/redis"
	"github.com/jhoicas/pos-ventas-api/internal/infrastructure/ws"
	httpRouter "github.com/jhoicas/pos-ventas-api/internal/interfaces/http"
	"github.com/jhoicas/pos-ventas-api/pkg/config"
	"github.com/jhoicas/pos-ventas-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

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
		Str("storage", cfg.Storage.Driver).
		Str("numbering", cfg.Sales.NumberSource).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	hub := ws.NewHub(log.Named("ws"), 256)
	go hub.Run(ctx)

	deps := appsales.Deps{
		Publisher: hub,
		Logger:    log,
		TxTimeout: cfg.Sales.TxTimeout,
	}

	var sourced repository.SourcedItemRepository
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := memory.NewSeeded()
		deps.TxRunner = store
		deps.Sales = store.Repos().Sales
		deps.Stores = store.Stores()
		deps.Customers = store.Customers()
		deps.Users = store.Users()
		sourced = store.Repos().SourcedItems
		log.Warn().Str("store_id", memory.DemoStoreID).Msg("almacenamiento en memoria: los datos se pierden al reiniciar")

	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migración del esquema")
			}
			log.Info().Msg("esquema aplicado")
		}
		deps.TxRunner = postgres.NewTxRunner(pool)
		deps.Sales = postgres.NewSaleRepository(pool)
		deps.Stores = postgres.NewStoreRepository(pool)
		deps.Customers = postgres.NewCustomerRepository(pool)
		deps.Users = postgres.NewUserRepository(pool)
		sourced = postgres.NewSourcedItemRepository(pool)
	}

	switch cfg.Sales.NumberSource {
	case config.SaleNumberSourceRedis:
		seq := infraredis.NewSaleSequence(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Sales.NumberPrefix)
		defer seq.Close()
		if err := seq.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		deps.Numbers = seq
	default:
		deps.Numbers = appsales.NewLocalNumberGenerator(cfg.Sales.NumberPrefix)
	}

	createSaleUC := appsales.NewCreateSaleUseCase(deps)
	queryUC := appsales.NewQueryUseCase(deps, sourced)
	receiptUC := appsales.NewReceiptUseCase(deps, infrapdf.NewReceiptGenerator())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "POS Ventas API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateSale: createSaleUC,
		Queries:    queryUC,
		Receipts:   receiptUC,
		Hub:        hub,
		JWTSecret:  cfg.JWT.Secret,
		Logger:     log.Named("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	stop()

	log.Info().Msg("aplicación detenida")
}
