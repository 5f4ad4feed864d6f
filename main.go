package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreybb/scriptcast/api"
	"github.com/coreybb/scriptcast/datastore"
	"github.com/coreybb/scriptcast/extraction"
	"github.com/coreybb/scriptcast/generation"
	"github.com/coreybb/scriptcast/pipeline"
	rh "github.com/coreybb/scriptcast/route-handlers"
	"github.com/coreybb/scriptcast/storage"
	"github.com/coreybb/scriptcast/webutil"
)

const (
	dbPingTimeout     = 5 * time.Second
	shutdownTimeout   = 15 * time.Second
	dbMaxOpenConns    = 25
	dbMaxIdleConns    = 25
	dbConnMaxLifetime = 5 * time.Minute
)

// config is loaded from the environment at startup. The required fields are
// the storage and model credentials: the service refuses to start without
// them rather than failing lazily on the first request.
type config struct {
	Port              string        `envconfig:"PORT" default:"8080"`
	Environment       string        `envconfig:"ENVIRONMENT" default:"development"`
	DatabaseURL       string        `envconfig:"DB_CONNECTION_STRING" required:"true"`
	GeminiAPIKey      string        `envconfig:"GEMINI_API_KEY" required:"true"`
	GeminiModel       string        `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	S3Bucket          string        `envconfig:"S3_BUCKET" required:"true"`
	AppNamespace      string        `envconfig:"APP_NAME" default:"scriptcast"`
	TrustedOrigins    []string      `envconfig:"TRUSTED_ORIGINS" default:"http://localhost:3000"`
	MaxUploadBytes    int64         `envconfig:"MAX_UPLOAD_BYTES" default:"52428800"` // 50 MiB
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"50"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"15m"`
}

func main() {
	_ = godotenv.Load()

	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal().Err(err).Msg("Configuration error")
	}

	setupLogging(cfg.Environment)

	db, err := setupDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database setup failed")
	}
	defer db.Close()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("AWS configuration error")
	}
	s3Client := s3.NewFromConfig(awsCfg)

	scriptRepo := datastore.NewScriptRepository(db)
	stager := storage.NewS3ObjectStager(s3Client, cfg.S3Bucket, cfg.AppNamespace)
	extractor := extraction.NewTextExtractor(stager)
	generator := generation.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	validator := pipeline.NewUploadValidator(cfg.MaxUploadBytes)

	scriptPipeline := pipeline.NewScriptPipeline(validator, stager, extractor, generator, scriptRepo)
	scriptHandler := rh.NewScriptHandler(scriptPipeline, scriptRepo, cfg.MaxUploadBytes)

	router := api.SetupRoutes(scriptHandler, api.RouterConfig{
		TrustedOrigins:    cfg.TrustedOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	})

	startServer(cfg.Port, router)
}

func setupLogging(environment string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if environment != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		webutil.IncludeErrorDetails = true
	}
}

func setupDatabase(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		db.Close() // Close unusable connection pool
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Database connection successful")
	return db, nil
}

func startServer(port string, router http.Handler) {
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", port).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	<-shutdownSignal // Block until signal received
	log.Info().Msg("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Server gracefully stopped")
}
