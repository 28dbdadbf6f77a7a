package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"ppm/internal/apiclient"
	"ppm/internal/config"
	"ppm/internal/email/noop"
	"ppm/internal/email/ses"
	"ppm/internal/handler"
	"ppm/internal/logging"
	"ppm/internal/port"
	"ppm/internal/repository/postgres"
	"ppm/internal/router"
	"ppm/internal/service"
	"ppm/internal/session"
	s3storage "ppm/internal/storage/s3"
)

// @title PPM Portal API
// @version 1.0
// @description Contract price analysis portal: cache negotiation, analysis viewer and report sharing.
// @BasePath /api/v1
func main() {
	if err := run(); err != nil {
		logrus.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.Init(cfg.Log, os.Stdout)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Session state
	var (
		db    *sqlx.DB
		store port.SessionStore
	)
	if cfg.Session.UsesPostgres() {
		db, err = postgres.NewDB(ctx, &cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		store = postgres.NewSessionStateRepo(db)
	} else {
		store = session.NewMemoryStore()
	}

	// Preview storage is optional
	var previewStorage port.PreviewStorage
	if cfg.S3.Enabled() {
		previewStorage, err = s3storage.NewPreviewStore(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 preview store: %w", err)
		}
	} else {
		logrus.Info("preview storage disabled, keeping previews inline")
	}

	var mailer port.ReportMailer
	switch cfg.Email.Provider {
	case "ses":
		mailer, err = ses.NewReportMailer(ctx, &cfg.Email)
		if err != nil {
			return fmt.Errorf("failed to initialize SES mailer: %w", err)
		}
	default:
		mailer = noop.NewReportMailer()
	}

	api := apiclient.NewClient(&cfg.API)

	// Initialize services
	tokenSvc := service.NewSessionTokenService(cfg.Session)
	previewSvc := service.NewPreviewService(previewStorage, store, &cfg.Preview)
	negotiationSvc := service.NewNegotiationService(api, store)
	viewerSvc := service.NewViewerService(api, store, previewSvc, cfg.API.PublicAnalysis)
	folderSvc := service.NewFolderService(api, store)
	reportSvc := service.NewReportService(store, mailer)

	// Initialize handlers
	uploadH := handler.NewUploadHandler(negotiationSvc, previewSvc, viewerSvc, store)
	viewerH := handler.NewViewerHandler(viewerSvc, reportSvc)
	folderH := handler.NewFolderHandler(folderSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(cfg, tokenSvc, uploadH, viewerH, folderH, healthH)
	r.MaxMultipartMemory = cfg.Preview.MaxFileBytes()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Server starting on %s (analysis API %s)", cfg.Server.Port, cfg.API.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logrus.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
