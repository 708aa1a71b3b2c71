// Builder import Lambda entry point, triggered by S3 uploads.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"stand-lead-engine/internal/app"
	"stand-lead-engine/internal/config"
	"stand-lead-engine/internal/handlers"
	"stand-lead-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	a, err := app.New(context.Background(), cfg, utils.Logger)
	if err != nil {
		log.Fatalf("Failed to create handler: %v", err)
	}
	defer a.Close()

	if a.Files == nil {
		log.Fatal("S3_BUCKET must be set for builder imports")
	}

	lambda.Start(handlers.NewBuilderImportHandler(a.Files, a.Store, utils.Logger.Named("builder-import")).Handle)
}
