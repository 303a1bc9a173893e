package main

import (
	"fmt"
	"log"

	"gstrone/internal/config"
	emailnoop "gstrone/internal/email/noop"
	"gstrone/internal/email/ses"
	"gstrone/internal/handler"
	"gstrone/internal/oracle"
	"gstrone/internal/oracle/gemini"
	oraclenoop "gstrone/internal/oracle/noop"
	"gstrone/internal/port"
	"gstrone/internal/repository/postgres"
	"gstrone/internal/router"
	"gstrone/internal/service"
	s3storage "gstrone/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	uploadRepo := postgres.NewUploadRepo(db)
	filingRepo := postgres.NewFilingRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize classification oracle
	oracle.RegisterProvider("noop", func(cfg *config.OracleConfig) (port.ClassificationOracle, error) {
		return oraclenoop.New(), nil
	})
	oracle.RegisterProvider("gemini", func(cfg *config.OracleConfig) (port.ClassificationOracle, error) {
		return gemini.New(cfg), nil
	})
	classOracle, err := oracle.New(&cfg.Oracle)
	if err != nil {
		return fmt.Errorf("failed to initialize oracle: %w", err)
	}

	// Initialize email sender
	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = emailnoop.NewNoopSender()
	}

	// Initialize services
	uploadSvc := service.NewUploadService(uploadRepo, s3Client, &cfg.S3)
	generationSvc := service.NewGenerationService(uploadRepo, filingRepo, classOracle, emailSender, cfg)

	// Initialize handlers
	uploadH := handler.NewUploadHandler(uploadSvc)
	generationH := handler.NewGenerationHandler(generationSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, uploadH, generationH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
