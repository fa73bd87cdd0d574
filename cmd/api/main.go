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
	"github.com/tiendapro/tiendapro-api/internal/application/damage"
	"github.com/tiendapro/tiendapro-api/internal/application/ledger"
	"github.com/tiendapro/tiendapro-api/internal/application/sale"
	"github.com/tiendapro/tiendapro-api/internal/application/usecase"
	"github.com/tiendapro/tiendapro-api/internal/domain/repository"
	"github.com/tiendapro/tiendapro-api/internal/infrastructure/memory"
	"github.com/tiendapro/tiendapro-api/internal/infrastructure/postgres"
	infraredis "github.com/tiendapro/tiendapro-api/internal/infrastructure/redis"
	httpRouter "github.com/tiendapro/tiendapro-api/internal/interfaces/http"
	"github.com/tiendapro/tiendapro-api/pkg/config"
	"github.com/tiendapro/tiendapro-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Persistencia: PostgreSQL si hay configuración de BD; si no, almacén en
	// memoria para desarrollo local.
	var (
		txRunner    ledger.TxRunner
		outletRepo  repository.OutletRepository
		productRepo repository.ProductRepository
	)
	if cfg.DB.Enabled() {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
		outletRepo = postgres.NewOutletRepository(pool)
		productRepo = postgres.NewProductRepository(pool)
	} else {
		log.Warn().Msg("sin configuración de BD: usando almacén en memoria")
		store := memory.NewStore()
		txRunner = store
		outletRepo = store.Outlets()
		productRepo = store.Products()
	}

	// Espejo de reservas en Redis (opcional).
	var holds ledger.HoldMirror
	if cfg.Redis.Addr != "" {
		client, err := infraredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		holds = infraredis.NewHoldMirror(client)
	}

	outletUC := usecase.NewOutletUseCase(outletRepo)
	productUC := usecase.NewProductUseCase(productRepo)
	stockUC := ledger.NewStockUseCase(txRunner, outletRepo, productRepo, holds)
	saleUC := sale.NewSaleUseCase(txRunner, outletRepo, productRepo)
	damageUC := damage.NewDamageUseCase(txRunner, outletRepo, productRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "TiendaPro API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		OutletUC:  outletUC,
		ProductUC: productUC,
		StockUC:   stockUC,
		SaleUC:    saleUC,
		DamageUC:  damageUC,
		JWTSecret: cfg.JWT.Secret,
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

	log.Info().Msg("aplicación detenida")
}
