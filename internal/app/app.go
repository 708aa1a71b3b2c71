// Package app wires configuration into the stores, notifier stack and
// services shared by the server, the Lambda functions and leadctl.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"stand-lead-engine/internal/config"
	"stand-lead-engine/internal/handlers"
	"stand-lead-engine/internal/services/cache"
	"stand-lead-engine/internal/services/catalog"
	"stand-lead-engine/internal/services/database"
	"stand-lead-engine/internal/services/notifier"
	"stand-lead-engine/internal/services/quotes"
	"stand-lead-engine/internal/services/routing"
	s3service "stand-lead-engine/internal/services/s3"
	"stand-lead-engine/internal/services/ses"
	"stand-lead-engine/internal/services/smtp"
	"stand-lead-engine/internal/services/sns"
	"stand-lead-engine/internal/services/store"
	"stand-lead-engine/internal/utils"
)

// BuilderStore is a store that also accepts builder imports.
type BuilderStore interface {
	store.Store
	store.BuilderWriter
}

// App holds the wired dependencies.
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	DB         *database.DB
	Redis      *redis.Client
	Store      BuilderStore
	Catalog    *catalog.Catalog
	Dispatcher *notifier.Dispatcher
	Router     *routing.Router
	Quotes     *quotes.Service
	Files      *s3service.Service

	mailCheck handlers.Check
}

// New builds an App from cfg. The PostgreSQL backend is required to connect;
// Redis and S3 are optional and skipped with a warning when unavailable.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: utils.OrDefault(logger, "app")}

	cat, err := catalog.Load(cfg.TradeShowCatalog)
	if err != nil {
		return nil, err
	}
	a.Catalog = cat

	base, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = base

	if cfg.RedisURL != "" {
		rdb, err := cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Logger.Warn("Builder cache disabled", zap.Error(err))
		} else {
			a.Redis = rdb
			a.Store = cache.New(base, rdb, cfg.BuilderCacheTTL, a.Logger.Named("cache"))
		}
	}

	mux, err := a.notifierMux(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Dispatcher = notifier.NewDispatcher(mux, notifier.DispatcherOptions{
		Workers:   cfg.NotifierWorkers,
		Rate:      cfg.NotifierRate,
		Burst:     cfg.NotifierBurst,
		QueueSize: cfg.NotifierQueueSize,
		Logger:    a.Logger.Named("dispatcher"),
	})

	a.Router = routing.NewRouter(a.Store, a.Dispatcher, routing.Options{
		Catalog:      cat,
		Logger:       a.Logger.Named("routing"),
		AppBaseURL:   cfg.AppBaseURL,
		ReRouteAfter: cfg.ReRouteAfter,
		SMSEnabled:   cfg.SMSEnabled,
	})
	a.Quotes = quotes.NewService(a.Store, cat, a.Dispatcher, quotes.Options{
		Logger:     a.Logger.Named("quotes"),
		AppBaseURL: cfg.AppBaseURL,
	})

	if cfg.S3Bucket != "" {
		files, err := s3service.NewService(ctx, cfg.AWSRegion, cfg.S3Bucket)
		if err != nil {
			a.Logger.Warn("S3 import bucket disabled", zap.Error(err))
		} else {
			a.Files = files
		}
	}

	return a, nil
}

func (a *App) openStore(ctx context.Context) (BuilderStore, error) {
	switch a.Config.StoreBackend {
	case config.StoreBackendMemory:
		mem := store.NewMemoryStore(nil, nil)
		if a.Config.BuildersCSV != "" {
			if err := seedBuilders(ctx, mem, a.Config.BuildersCSV, a.Logger); err != nil {
				return nil, err
			}
		}
		return mem, nil

	case config.StoreBackendPostgres, "":
		db, err := database.New(ctx, a.Config)
		if err != nil {
			return nil, err
		}
		a.DB = db
		if a.Config.DBMigrate {
			if err := db.Migrate(ctx); err != nil {
				return nil, err
			}
		}
		return database.NewStore(db), nil
	}

	return nil, fmt.Errorf("unknown store backend %q", a.Config.StoreBackend)
}

func seedBuilders(ctx context.Context, w store.BuilderWriter, path string, logger *zap.Logger) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read builders file: %w", err)
	}

	builders, parseErrors := utils.NewCSVParser().ParseBuilders(string(content))
	for _, e := range parseErrors {
		logger.Warn("Skipped builder row", zap.String("file", path), zap.Error(e))
	}

	res, err := w.UpsertBuilders(ctx, builders)
	if err != nil {
		return err
	}
	logger.Info("Seeded builders", zap.String("file", path), zap.Int("upserted", res.UpsertedCount))
	return nil
}

func (a *App) notifierMux(ctx context.Context) (*notifier.Mux, error) {
	cfg := a.Config
	mux := notifier.NewMux(a.Logger.Named("notifier"))

	switch cfg.MailProvider {
	case config.MailProviderSES:
		svc, err := ses.NewService(ctx, cfg.AWSRegion, ses.Options{
			FromEmail:        cfg.SESSenderEmail,
			ConfigurationSet: cfg.SESConfigSet,
			Logger:           a.Logger.Named("ses"),
		})
		if err != nil {
			return nil, err
		}
		mux.Handle(notifier.ChannelEmail, svc)
		a.mailCheck = svc.HealthCheck

	case config.MailProviderSMTP:
		sender, err := smtp.NewSender(smtp.Options{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			FromEmail: cfg.SMTPFromEmail,
			FromName:  cfg.SMTPFromName,
		})
		if err != nil {
			return nil, err
		}
		mux.Handle(notifier.ChannelEmail, sender)

	case config.MailProviderLog, "":
		mux.Handle(notifier.ChannelEmail, notifier.LogSender{Logger: a.Logger.Named("mail")})

	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}

	if cfg.SMSEnabled {
		sender, err := sns.NewSender(ctx, cfg.AWSRegion, cfg.SMSDefaultRegion, cfg.SMSSenderID)
		if err != nil {
			return nil, err
		}
		mux.Handle(notifier.ChannelSMS, sender)
	}

	return mux, nil
}

// HealthChecks returns a probe for every configured backing service.
func (a *App) HealthChecks() map[string]handlers.Check {
	checks := map[string]handlers.Check{}
	if a.DB != nil {
		checks["database"] = a.DB.HealthCheck
	}
	if a.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() }
	}
	if a.mailCheck != nil {
		checks["ses"] = a.mailCheck
	}
	return checks
}

// Close drains the notification queue and releases connections.
func (a *App) Close() {
	if a.Dispatcher != nil {
		a.Dispatcher.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
