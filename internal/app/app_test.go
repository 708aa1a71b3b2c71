package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stand-lead-engine/internal/config"
	"stand-lead-engine/internal/models"
	"stand-lead-engine/internal/services/cache"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "builders.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"id,company_name,city,country,verified,rating,email\n"+
			"spree,Spree Stands,Berlin,Germany,yes,4.8,hello@spree.example\n"+
			",Nameless,Berlin,Germany,yes,4,\n",
	), 0o600))

	return &config.Config{
		StoreBackend:      config.StoreBackendMemory,
		BuildersCSV:       csvPath,
		MailProvider:      config.MailProviderLog,
		NotifierWorkers:   2,
		NotifierQueueSize: 8,
		AppBaseURL:        "https://stands.example.com",
	}
}

func TestNewMemoryApp(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, memoryConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	builders, err := a.Store.GetBuilders(ctx)
	require.NoError(t, err)
	require.Len(t, builders, 1)
	assert.Equal(t, "spree", builders[0].ID)

	lead := &models.Lead{
		CompanyName:   "Acme",
		ContactEmail:  "events@acme.example",
		City:          "Berlin",
		Country:       "Germany",
		TradeShowSlug: "ifa-berlin",
	}
	require.NoError(t, a.Store.CreateLead(ctx, lead))

	res := a.Router.RouteNewLead(ctx, lead.ID)
	assert.True(t, res.Success)
	assert.Empty(t, a.HealthChecks())
	assert.Nil(t, a.Files)
}

func TestNewWithRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := memoryConfig(t)
	cfg.RedisURL = "redis://" + mr.Addr()

	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	_, ok := a.Store.(*cache.BuilderCache)
	assert.True(t, ok)
	assert.Contains(t, a.HealthChecks(), "redis")
}

func TestNewRejectsUnknownProviders(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.MailProvider = "pigeon"
	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "pigeon")

	cfg = memoryConfig(t)
	cfg.StoreBackend = "csv"
	_, err = New(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "csv")
}
