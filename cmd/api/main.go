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

	"github.com/jhoicas/pos-ledger/internal/application/billing"
	"github.com/jhoicas/pos-ledger/internal/application/editing"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/application/numbering"
	"github.com/jhoicas/pos-ledger/internal/application/ports"
	"github.com/jhoicas/pos-ledger/internal/application/returns"
	"github.com/jhoicas/pos-ledger/internal/application/settings"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/redisguard"
	httpRouter "github.com/jhoicas/pos-ledger/internal/interfaces/http"
	"github.com/jhoicas/pos-ledger/pkg/config"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

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
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("crear esquema")
		}
		log.Info().Msg("esquema verificado")
	}

	// Redis es opcional: sin REDIS_ADDR el índice único basta para la unicidad.
	var guard ports.AllocationGuard = ports.NoopGuard{}
	if cfg.Redis.Enabled() {
		rdb, err := redisguard.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, se continúa sin lock distribuido")
		} else {
			defer rdb.Close()
			guard = redisguard.New(rdb, time.Duration(cfg.Redis.LockTTL)*time.Second, 2*time.Second, log)
		}
	}

	txRunner := postgres.NewTxRunner(pool)
	repos := postgres.NewRepos(pool)
	now := ports.SystemClock

	ledger := inventory.NewLedger(now)
	allocator := numbering.NewAllocator(cfg.Ledger.NumberMaxAttempts, now, log)
	committer := numbering.NewCommitter(guard, cfg.Ledger.InsertRetries, log)
	resolver := settings.NewResolver(settings.FromConfig(cfg.Ledger))

	documentUC := billing.NewDocumentUseCase(txRunner, repos, ledger, allocator, committer, resolver, now, log)
	returnUC := returns.NewReturnUseCase(txRunner, repos, ledger, allocator, committer, resolver, now, log)
	editUC := editing.NewEditUseCase(txRunner, repos, ledger, resolver, now, log)
	productUC := inventory.NewProductUseCase(txRunner, repos.Products, ledger, now, log)
	auditUC := inventory.NewAuditUseCase(txRunner, repos.Products, repos.Ledger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "POS Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Documents: documentUC,
		Returns:   returnUC,
		Editing:   editUC,
		Catalog:   productUC,
		Audit:     auditUC,
		JWTSecret: cfg.JWT.Secret,
		Log:       log,
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
