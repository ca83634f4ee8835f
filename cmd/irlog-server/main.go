package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/NLight-n/IRLog/internal/config"
	"github.com/NLight-n/IRLog/internal/domain/admin"
	"github.com/NLight-n/IRLog/internal/domain/audit"
	"github.com/NLight-n/IRLog/internal/domain/physician"
	"github.com/NLight-n/IRLog/internal/domain/procedure"
	"github.com/NLight-n/IRLog/internal/domain/settings"
	"github.com/NLight-n/IRLog/internal/domain/user"
	"github.com/NLight-n/IRLog/internal/domain/worklist"
	"github.com/NLight-n/IRLog/internal/platform/auth"
	"github.com/NLight-n/IRLog/internal/platform/db"
	"github.com/NLight-n/IRLog/internal/platform/middleware"
	"github.com/NLight-n/IRLog/internal/platform/storage"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "irlog-server",
		Short: "Interventional Radiology procedure log server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(adminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage the bootstrap administrator",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create the initial admin account (only when no users exist)",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			email, _ := cmd.Flags().GetString("email")
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password are required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
			recorder := audit.NewRecorder(audit.NewRepoPG(pool), logger)
			userSvc := user.NewService(user.NewRepoPG(pool), recorder, []byte(cfg.JWTSecret), time.Duration(cfg.TokenTTL)*time.Hour)

			u, err := userSvc.EnsureAdmin(ctx, username, password, email)
			if err != nil {
				return err
			}
			fmt.Printf("Admin user %q created (id=%d).\n", u.Username, u.ID)
			return nil
		},
	}
	createCmd.Flags().String("username", "", "Admin username")
	createCmd.Flags().String("password", "", "Admin password")
	createCmd.Flags().String("email", "", "Admin email")
	cmd.AddCommand(createCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	backup, err := db.NewBackup(cfg.DatabaseURL, cfg.PGDumpPath, cfg.PSQLPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure backup tooling")
	}

	// Object storage for procedure attachments (optional)
	var blobStore *storage.MinioStore
	if cfg.MinioEndpoint != "" {
		blobStore, err = storage.NewMinio(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL, cfg.MinioBucket)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure object storage")
		}
		if err := blobStore.EnsureBucket(ctx); err != nil {
			logger.Fatal().Err(err).Str("bucket", cfg.MinioBucket).Msg("failed to ensure storage bucket")
		}
		logger.Info().Str("endpoint", cfg.MinioEndpoint).Str("bucket", cfg.MinioBucket).Msg("object storage configured")
	} else {
		logger.Warn().Msg("no object storage configured; file attachments are disabled")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Repositories
	auditRepo := audit.NewRepoPG(pool)
	settingsRepo := settings.NewRepoPG(pool)
	physicianRepo := physician.NewRepoPG(pool)
	procedureRepo := procedure.NewRepoPG(pool)
	worklistRepo := worklist.NewRepoPG(pool)
	userRepo := user.NewRepoPG(pool)

	// Services
	recorder := audit.NewRecorder(auditRepo, logger)
	settingsSvc := settings.NewService(settingsRepo)
	physicianSvc := physician.NewService(physicianRepo, recorder)
	procedureSvc := procedure.NewService(procedureRepo, settingsSvc, recorder)
	if blobStore != nil {
		procedureSvc = procedureSvc.WithStore(blobStore)
	}
	worklistSvc := worklist.NewService(worklistRepo, recorder)
	userSvc := user.NewService(userRepo, recorder, []byte(cfg.JWTSecret), time.Duration(cfg.TokenTTL)*time.Hour)

	// Handlers
	settingsHandler := settings.NewHandler(settingsSvc, recorder)
	physicianHandler := physician.NewHandler(physicianSvc)
	procedureHandler := procedure.NewHandler(procedureSvc)
	worklistHandler := worklist.NewHandler(worklistSvc)
	userHandler := user.NewHandler(userSvc)
	auditHandler := audit.NewHandler(auditRepo)
	adminHandler := admin.NewHandler(backup, logger)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// Public routes: login, first-run setup, and the app logo (login page)
	public := e.Group("/api/v1")
	userHandler.RegisterPublicRoutes(public)
	settingsHandler.RegisterPublicRoutes(public)

	// Authenticated API
	apiV1 := e.Group("/api/v1")
	if cfg.IsDev() && cfg.JWTSecret == "" {
		logger.Warn().Msg("no JWT secret configured; running with permissive dev auth")
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.JWTMiddleware([]byte(cfg.JWTSecret)))
	}
	apiV1.Use(middleware.Audit(logger))

	settingsHandler.RegisterRoutes(apiV1)
	physicianHandler.RegisterRoutes(apiV1)
	procedureHandler.RegisterRoutes(apiV1)
	worklistHandler.RegisterRoutes(apiV1)
	userHandler.RegisterRoutes(apiV1)
	auditHandler.RegisterRoutes(apiV1)
	adminHandler.RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
