// Command health serves the health check Lambda.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"stand-lead-engine/internal/config"
	"stand-lead-engine/internal/handlers"
	"stand-lead-engine/internal/services/database"
	"stand-lead-engine/internal/utils"
)

func main() {
	_ = utils.InitLogger("info")
	defer utils.Sync()

	checks := map[string]handlers.Check{}

	cfg, err := config.Load()
	if err == nil && cfg.StoreBackend == config.StoreBackendPostgres {
		db, err := database.New(context.Background(), cfg)
		if err != nil {
			utils.Logger.Warn("Database unavailable", zap.Error(err))
			checks["database"] = func(context.Context) error { return err }
		} else {
			defer db.Close()
			checks["database"] = db.HealthCheck
		}
	}

	lambda.Start(handlers.NewHealthHandler(checks).Handle)
}
