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
	"github.com/jhoicas/lotes-api/internal/application/analytics"
	"github.com/jhoicas/lotes-api/internal/application/auth"
	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/application/profitshare"
	"github.com/jhoicas/lotes-api/internal/application/sales"
	infrapdf "github.com/jhoicas/lotes-api/internal/infrastructure/pdf"
	"github.com/jhoicas/lotes-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/lotes-api/internal/interfaces/http"
	"github.com/jhoicas/lotes-api/internal/worker"
	"github.com/jhoicas/lotes-api/pkg/config"
	"github.com/jhoicas/lotes-api/pkg/logger"
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

	// Zona de calendario de repartos: fijada por config, nunca la del host.
	loc, err := time.LoadLocation(cfg.Share.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Share.Timezone).Msg("zona horaria inválida")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	batchRepo := postgres.NewBatchRepository(pool)
	orderRepo := postgres.NewSalesOrderRepository(pool)
	shareRepo := postgres.NewProfitShareRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	batchUC := inventory.NewBatchUseCase(batchRepo)
	orderUC := sales.NewOrderUseCase(txRunner, orderRepo, batchRepo)
	shareUC := profitshare.NewShareUseCase(txRunner, shareRepo, profitshare.Config{
		MinYear:  cfg.Share.MinYear,
		Location: loc,
	})
	pdfGenerator := infrapdf.NewMarotoShareGenerator()
	sharePDFUC := profitshare.NewPDFUseCase(shareRepo, orderRepo, shareUC, pdfGenerator)
	dashboardUC := analytics.NewDashboardUseCase(reportRepo, loc)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// Scheduler del reparto automático: chequeo diario del día de disparo.
	scheduler := worker.NewShareScheduler(shareUC, log, worker.SchedulerConfig{
		TriggerDay:    cfg.Share.TriggerDay,
		CheckInterval: cfg.Share.CheckInterval,
		Location:      loc,
	})
	scheduler.Start()
	defer scheduler.Stop()

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
		Title:    "Lotes API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		BatchUC:     batchUC,
		OrderUC:     orderUC,
		ShareUC:     shareUC,
		SharePDFUC:  sharePDFUC,
		DashboardUC: dashboardUC,
		JWTSecret:   cfg.JWT.Secret,
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

	scheduler.Stop()
	log.Info().Msg("aplicación detenida")
}
