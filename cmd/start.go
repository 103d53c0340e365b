package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-reconciler/core/config"
	"stock-reconciler/core/database"
	"stock-reconciler/core/loader"
	"stock-reconciler/core/locker"
	"stock-reconciler/core/logger"
	"stock-reconciler/core/middleware/auth"
	"stock-reconciler/core/middleware/rayid"
	"stock-reconciler/core/storage"

	"stock-reconciler/feature/baseline"
	"stock-reconciler/feature/events"
	"stock-reconciler/feature/ledger"
	"stock-reconciler/feature/rates"
	"stock-reconciler/feature/reconcile"
	"stock-reconciler/feature/runs"
	"stock-reconciler/feature/tenant"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the reconciliation server",
	Long:  `Starts the HTTP server, the run coordinator and its background workers.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database. The ledger lives here; the service cannot
		// run without it.
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := db.AutoMigrate(
			&tenant.Tenant{},
			&ledger.Entry{},
			&ledger.Item{},
			&baseline.StockCount{},
			&runs.Run{},
		); err != nil {
			logg.Fatal("Failed to migrate database schema", zap.Error(err))
		}

		// 4. Report archive storage (advisory: warn and continue without it)
		var archiver *events.Archiver
		if client, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Report archiving disabled, storage client failed", zap.Error(err))
		} else {
			archiver = events.NewArchiver(client, cfg.Storage.Bucket)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := archiver.EnsureBucket(ctx); err != nil {
				logg.Warn("Report archiving disabled, bucket unavailable", zap.Error(err))
				archiver = nil
			}
			cancel()
		}

		// 5. Per-tenant lock backend
		var locks locker.Locker
		if cfg.Locker.Addr != "" {
			redisLocker, err := locker.NewRedisLocker(cfg.Locker)
			if err != nil {
				logg.Fatal("Failed to connect to lock backend", zap.Error(err))
			}
			locks = redisLocker
			logg.Info("Using Redis tenant locks", zap.String("addr", cfg.Locker.Addr))
		} else {
			locks = locker.NewMemoryLocker()
			logg.Warn("No Redis configured, tenant locks are process-local")
		}

		// 6. Exchange rate gateway
		gateway := rates.NewHTTPGateway(cfg.Rates)
		probeCtx, probeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if !gateway.TestConnection(probeCtx) {
			logg.Warn("Rate provider health check failed, runs needing conversion will retry",
				zap.String("endpoint", cfg.Rates.Endpoint))
		}
		probeCancel()

		// 7. Completion event emitter
		emitter := events.NewKafkaEmitter(cfg.Events)
		defer emitter.Close()

		// 8. Engine and coordinator
		tenantStore := tenant.NewGormStore(db)
		ledgerStore := ledger.NewGormStore(db)
		runStore := runs.NewGormStore(db)
		provider := baseline.NewGormProvider(db)

		engine := reconcile.NewEngine(ledgerStore, provider, gateway, logg, cfg.Engine)
		coordinator := runs.NewCoordinator(runStore, tenantStore, ledgerStore, engine,
			locks, emitter, archiver, logg, cfg.Runs)
		coordinator.Start()

		// 9. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// Middleware Registration
		// RayID must be first to trace everything
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Health endpoint stays public for load balancer probes
		app.Get("/health", func(c *fiber.Ctx) error {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Context())
			}
			if err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status": "degraded",
					"error":  err.Error(),
				})
			}
			return c.JSON(fiber.Map{"status": "ok"})
		})

		// Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 10. Load Features
		mgr := loader.NewManager()
		mgr.Register(runs.NewFeature(coordinator, runStore, logg))
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 11. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 12. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()

		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()
		if err := coordinator.Stop(stopCtx); err != nil {
			logg.Warn("Coordinator did not drain cleanly", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
