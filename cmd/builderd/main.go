package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	filestoreadapter "github.com/buildervan/builderd/internal/adapter/driven/filestore"
	githubadapter "github.com/buildervan/builderd/internal/adapter/driven/github"
	lumaadapter "github.com/buildervan/builderd/internal/adapter/driven/luma"
	resendadapter "github.com/buildervan/builderd/internal/adapter/driven/resend"
	socialadapter "github.com/buildervan/builderd/internal/adapter/driven/social"
	sqliteadapter "github.com/buildervan/builderd/internal/adapter/driven/sqlite"
	httphandler "github.com/buildervan/builderd/internal/adapter/driving/http"
	"github.com/buildervan/builderd/internal/application"
	"github.com/buildervan/builderd/internal/config"
	"github.com/buildervan/builderd/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"data_dir", cfg.DataDir,
		"storage", cfg.Storage,
		"github_repo", cfg.GitHubRepo,
		"report_interval", cfg.ReportInterval,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Wire the subscription store. The file backend keeps everything in a
	// single JSON document under the data dir; the sqlite backend opens a
	// dual reader/writer WAL database and runs migrations.
	var subscriptionStore driven.SubscriptionStore
	if cfg.Storage == config.StorageSQLite {
		db, err := sqliteadapter.NewDB(cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		slog.Info("database opened", "path", cfg.DBPath)

		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			return err
		}
		slog.Info("migrations complete")

		subscriptionStore = sqliteadapter.NewSubscriptionRepo(db)
	} else {
		subscriptionStore = filestoreadapter.NewSubscriptionStore(cfg.DataDir)
	}

	// 4. Wire the remaining driven adapters. Each degrades individually when
	// its credentials are absent.
	reportStore := filestoreadapter.NewReportStore(cfg.DataDir)
	ghClient := githubadapter.NewClient(cfg.GitHubToken, cfg.GitHubRepo)
	if !cfg.HasGitHubCredentials() {
		slog.Warn("no github token configured, report generation will fail until one is set")
	}
	emailSender := resendadapter.NewSender(cfg.ResendAPIKey, cfg.FromEmail, cfg.FromName, cfg.SiteURL)
	lumaClient := lumaadapter.NewClient(cfg.LumaAPIKey, cfg.LumaBaseURL)

	// 5. Create application services.
	reportSvc := application.NewReportService(ghClient, reportStore)
	newsletterSvc := application.NewNewsletterService(subscriptionStore, emailSender)
	socialSvc := application.NewSocialService(
		socialadapter.NewXPublisher(cfg.XBearerToken),
		socialadapter.NewNostrPublisher(cfg.NostrPrivateKey, cfg.NostrRelays),
	)

	// 6. Start the report scheduler unless disabled.
	if cfg.ReportInterval > 0 {
		scheduler := application.NewReportScheduler(reportSvc, cfg.ReportInterval)
		go scheduler.Start(ctx)
	} else {
		slog.Info("report scheduler disabled")
	}

	// 7. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(reportSvc, newsletterSvc, socialSvc, lumaClient, cfg.AdminToken, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	// 8. Log startup complete.
	slog.Info("builderd started",
		"listen_addr", cfg.ListenAddr,
		"storage", cfg.Storage,
		"report_interval", cfg.ReportInterval,
	)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout to drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
