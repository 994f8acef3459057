package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tavi/tavi/internal/config"
	"github.com/tavi/tavi/internal/domain/documents"
	"github.com/tavi/tavi/internal/domain/patient"
	"github.com/tavi/tavi/internal/domain/procedure"
	"github.com/tavi/tavi/internal/platform/db"
	"github.com/tavi/tavi/internal/platform/janitor"
	"github.com/tavi/tavi/internal/platform/middleware"
	"github.com/tavi/tavi/internal/platform/templates"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:          "tavi-server",
		Short:        "TAVI patient registry and clinical document service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(previewCmd())

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
			return withMigrator(dir, func(ctx context.Context, m *db.Migrator) error {
				count, err := m.Up(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (default MIGRATIONS_DIR)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			return withMigrator(dir, func(ctx context.Context, m *db.Migrator) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				writeStatus(cmd.OutOrStdout(), statuses)
				return nil
			})
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory (default MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func withMigrator(dir string, fn func(ctx context.Context, m *db.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if dir == "" {
		dir = cfg.MigrationsDir
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, db.NewMigrator(pool, afero.NewOsFs(), dir))
}

func writeStatus(w io.Writer, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "generate <ambulatory|procedural|consent|blood-tests>",
		Short:     "Generate a document for a patient and print its path",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			id, err := patientFlag(cmd)
			if err != nil {
				return err
			}
			return withDocuments(func(ctx context.Context, svc *documents.Service) error {
				path, err := svc.Generate(ctx, kind, id)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}
	cmd.Flags().String("patient", "", "Patient id")
	_ = cmd.MarkFlagRequired("patient")
	return cmd
}

func previewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render a document as HTML",
	}

	consentCmd := &cobra.Command{
		Use:   "consent",
		Short: "Print the filled consent form as HTML",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := patientFlag(cmd)
			if err != nil {
				return err
			}
			return withDocuments(func(ctx context.Context, svc *documents.Service) error {
				html, err := svc.PreviewConsentForm(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), html)
				return nil
			})
		},
	}
	consentCmd.Flags().String("patient", "", "Patient id")
	_ = consentCmd.MarkFlagRequired("patient")
	cmd.AddCommand(consentCmd)

	return cmd
}

func kindNames() []string {
	names := make([]string, len(documents.Kinds))
	for i, k := range documents.Kinds {
		names[i] = string(k)
	}
	return names
}

func parseKind(s string) (documents.Kind, error) {
	for _, k := range documents.Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown document kind %q (want one of %v)", s, kindNames())
}

func patientFlag(cmd *cobra.Command) (uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString("patient")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("--patient must be a patient id: %w", err)
	}
	return id, nil
}

func withDocuments(fn func(ctx context.Context, svc *documents.Service) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(cfg.Env)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	patients := patient.NewService(patient.NewRepo(pool))
	return fn(ctx, newDocumentService(cfg, patients, logger))
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func newDocumentService(cfg *config.Config, patients documents.PatientSource, logger zerolog.Logger) *documents.Service {
	osFs := afero.NewOsFs()
	dirs := documents.Dirs{
		Ambulatory: cfg.AmbulatoryDir(),
		Procedural: cfg.ProceduralDir(),
		Forms:      cfg.FormsDir(),
	}
	jan := janitor.New(osFs, dirs.Forms, cfg.TempFileTTL, logger, documents.EphemeralPrefixes...)
	return documents.NewService(patients, templates.NewResolver(osFs, cfg.TemplatesDir), osFs, dirs, jan, logger)
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := newLogger(os.Getenv("ENV"))
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}
	logger := newLogger(cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	patients := patient.NewService(patient.NewRepo(pool))
	procedures := procedure.NewService(procedure.NewRepo(pool))

	osFs := afero.NewOsFs()
	forms := janitor.New(osFs, cfg.FormsDir(), cfg.TempFileTTL, logger, documents.EphemeralPrefixes...)
	if err := forms.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start janitor")
	}
	docs := documents.NewService(patients, templates.NewResolver(osFs, cfg.TemplatesDir), osFs, documents.Dirs{
		Ambulatory: cfg.AmbulatoryDir(),
		Procedural: cfg.ProceduralDir(),
		Forms:      cfg.FormsDir(),
	}, forms, logger)

	e := newEcho(cfg, logger, pool)
	apiV1 := e.Group("/api/v1")
	patient.NewHandler(patients).RegisterRoutes(apiV1)
	procedure.NewHandler(procedures).RegisterRoutes(apiV1)
	documents.NewHandler(docs).RegisterRoutes(apiV1)

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
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func newEcho(cfg *config.Config, logger zerolog.Logger, pool *pgxpool.Pool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.Sanitize(logger))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}
	return e
}
