// Presigned upload URL Lambda entry point.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"stand-lead-engine/internal/config"
	"stand-lead-engine/internal/handlers"
	s3service "stand-lead-engine/internal/services/s3"
	"stand-lead-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	files, err := s3service.NewService(context.Background(), cfg.AWSRegion, cfg.S3Bucket)
	if err != nil {
		log.Fatalf("Failed to create handler: %v", err)
	}

	lambda.Start(handlers.NewPresignedURLHandler(files, utils.Logger.Named("presigned-url")).Handle)
}
