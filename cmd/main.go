package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"

	"clothcheck-skill/handler"
	"clothcheck-skill/internal/cek"
	"clothcheck-skill/internal/integrations/line"
	"clothcheck-skill/internal/integrations/paramstore"
	"clothcheck-skill/internal/integrations/weather"
	"clothcheck-skill/internal/repository"
	"clothcheck-skill/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	// .env is a local-run convenience; Lambda sets real env vars.
	_ = godotenv.Load()

	postalCodeTable := mustEnv("POSTALCODE_TABLE")
	ratingTable := mustEnv("RATING_TABLE")
	paramPrefix := mustEnv("PARAM_PREFIX")
	extensionID := mustEnv("EXTENSION_ID")
	assetBaseURL := mustEnv("ASSET_BASE_URL")
	countryCode := envDefault("COUNTRY_CODE", "JP")

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	store, err := repository.New(awsdynamodb.NewFromConfig(cfg), postalCodeTable, ratingTable)
	if err != nil {
		slog.Error("failed to create rating store", "err", err)
		os.Exit(1)
	}
	weatherClient, err := weather.NewClient(ssmClient, paramPrefix)
	if err != nil {
		slog.Error("failed to create weather client", "err", err)
		os.Exit(1)
	}
	lineClient, err := line.NewClient(ssmClient, paramPrefix, assetBaseURL)
	if err != nil {
		slog.Error("failed to create line client", "err", err)
		os.Exit(1)
	}

	// The platform's public key rotates rarely; fetching it once at cold
	// start keeps the per-request path free of SSM calls.
	keyPEM, err := ssmClient.GetParameter(ctx, paramPrefix+"/cek-public-key")
	if err != nil {
		slog.Error("failed to load CEK public key", "err", err)
		os.Exit(1)
	}
	verifier, err := cek.NewVerifier([]byte(keyPEM))
	if err != nil {
		slog.Error("failed to parse CEK public key", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	dialog, err := usecase.NewDialogService(store, weatherClient, lineClient, countryCode)
	if err != nil {
		slog.Error("failed to create dialog service", "err", err)
		os.Exit(1)
	}
	controller, err := usecase.NewController(dialog)
	if err != nil {
		slog.Error("failed to create controller", "err", err)
		os.Exit(1)
	}
	h, err := handler.NewHandler(controller, verifier, extensionID)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
