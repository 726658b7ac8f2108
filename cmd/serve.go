package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aylalah/ag-rms-sub000/internal/db/bunx"
	"github.com/aylalah/ag-rms-sub000/internal/db/models"
	appmiddleware "github.com/aylalah/ag-rms-sub000/internal/middleware"
	"github.com/aylalah/ag-rms-sub000/internal/repository"
	"github.com/aylalah/ag-rms-sub000/internal/server"
	"github.com/aylalah/ag-rms-sub000/internal/services/audit"
	"github.com/aylalah/ag-rms-sub000/internal/services/iam"
	"github.com/aylalah/ag-rms-sub000/internal/services/notify"
	"github.com/aylalah/ag-rms-sub000/internal/services/record"
	"github.com/aylalah/ag-rms-sub000/internal/services/upload"
	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"
)

// decoderCacheSize bounds the token decode cache.
const decoderCacheSize = 512

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ratings API server",
	Long:  `Starts the HTTP server with the entity, login, upload and audit endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Connect to database
		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		log.Printf("Connected to database")

		// Initialize repositories
		clientRepo := repository.NewBunRecordRepository[models.Client](db)
		contactRepo := repository.NewBunRecordRepository[models.Contact](db)
		industryRepo := repository.NewBunRecordRepository[models.Industry](db)
		methodologyRepo := repository.NewBunRecordRepository[models.Methodology](db)
		questionnaireRepo := repository.NewBunRecordRepository[models.Questionnaire](db)
		ratingRepo := repository.NewBunRecordRepository[models.Rating](db)
		auditRepo := repository.NewBunAuditRepository(db)

		// Authentication and access policy
		decoder, err := iam.NewDecoder(cfg.JWTSecret, cfg.TokenTTL, decoderCacheSize)
		if err != nil {
			return fmt.Errorf("configure token decoder: %w", err)
		}
		policy, err := iam.NewPolicy()
		if err != nil {
			return fmt.Errorf("configure access policy: %w", err)
		}

		recorder := audit.NewRecorder(auditRepo)
		logins := iam.NewLoginService(contactRepo, decoder, recorder)

		// Outbound mail: log-only unless an SMTP relay is configured.
		var mailer notify.Mailer = notify.LogMailer{}
		if cfg.SMTP.Enabled() {
			mailer, err = notify.NewSMTPMailer(cfg.SMTP)
			if err != nil {
				return fmt.Errorf("configure smtp mailer: %w", err)
			}
			log.Printf("SMTP mailer configured for %s", cfg.SMTP.Host)
		} else {
			log.Printf("SMTP not configured, emails will be logged")
		}

		dispatcher := notify.NewDispatcher(cfg.NotifyWindow, clock.New(), mailer)
		defer dispatcher.Close()

		// Object storage for uploads. Without a bucket the upload routes
		// still mount, but every storage write fails cleanly per file.
		var storage upload.ObjectStorage
		if cfg.Storage.Enabled() {
			storage, err = upload.NewS3Storage(cmd.Context(), cfg.Storage)
			if err != nil {
				return fmt.Errorf("configure object storage: %w", err)
			}
			log.Printf("Object storage configured for bucket %s", cfg.Storage.Bucket)
		} else {
			storage = upload.UnconfiguredStorage{}
			log.Printf("Object storage not configured, uploads will be rejected")
		}
		pipeline := upload.NewPipeline(storage, dispatcher)

		// Entity services
		clients, err := record.NewClientService(clientRepo, industryRepo, policy, recorder)
		if err != nil {
			return err
		}
		contacts, err := record.NewContactService(contactRepo, policy, recorder, mailer)
		if err != nil {
			return err
		}
		industries, err := record.NewIndustryService(industryRepo, policy, recorder)
		if err != nil {
			return err
		}
		methodologies, err := record.NewMethodologyService(methodologyRepo, policy, recorder)
		if err != nil {
			return err
		}
		questionnaires, err := record.NewQuestionnaireService(questionnaireRepo, policy, recorder)
		if err != nil {
			return err
		}
		ratings, err := record.NewRatingService(ratingRepo, policy, recorder)
		if err != nil {
			return err
		}

		r, err := server.NewRouter(server.RouterOptions{
			Clients:        clients,
			Contacts:       contacts,
			Industries:     industries,
			Methodologies:  methodologies,
			Questionnaires: questionnaires,
			Ratings:        ratings,
			Logins:         logins,
			Uploads:        pipeline,
			Audits:         auditRepo,
			Policy:         policy,
			Middleware: []func(http.Handler) http.Handler{
				appmiddleware.Authn(decoder),
			},
		})
		if err != nil {
			return fmt.Errorf("assemble router: %w", err)
		}

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			log.Printf("Starting server on %s", cfg.ServerAddr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			log.Printf("Received signal %v, shutting down gracefully", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			log.Printf("Server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
