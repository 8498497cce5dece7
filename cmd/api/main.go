package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/serviplus/repuestos-api/internal/application/inventory"
	"github.com/serviplus/repuestos-api/internal/application/parts"
	"github.com/serviplus/repuestos-api/internal/application/request"
	"github.com/serviplus/repuestos-api/internal/application/returns"
	"github.com/serviplus/repuestos-api/internal/infrastructure/postgres"
	httpRouter "github.com/serviplus/repuestos-api/internal/interfaces/http"
	"github.com/serviplus/repuestos-api/pkg/config"
	"github.com/serviplus/repuestos-api/pkg/logger"
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
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repos sobre el pool: lecturas fuera de transacción. Las escrituras pasan
	// por el TxRunner, que entrega repos ligados a la transacción.
	invRepo := postgres.NewInventoryRepository(pool)
	movRepo := postgres.NewMovementRepository(pool)
	reqRepo := postgres.NewSpareRequestRepository(pool)
	retRepo := postgres.NewReturnRequestRepository(pool)
	partRepo := postgres.NewPartRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	recorder := inventory.NewRecorder()
	requestUC := request.NewUseCase(txRunner, recorder, reqRepo)
	returnUC := returns.NewUseCase(txRunner, recorder, retRepo, invRepo)
	availabilityUC := inventory.NewAvailabilityUseCase(invRepo)
	movementUC := inventory.NewMovementQueryUseCase(movRepo)
	adjustUC := inventory.NewAdjustUseCase(txRunner, recorder)
	partUC := parts.NewUseCase(partRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		RequestUC:      requestUC,
		ReturnUC:       returnUC,
		AvailabilityUC: availabilityUC,
		MovementUC:     movementUC,
		AdjustUC:       adjustUC,
		PartUC:         partUC,
		JWTSecret:      cfg.JWT.Secret,
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
