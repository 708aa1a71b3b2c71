package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stand-lead-engine/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		DBHost:     "localhost",
		DBPort:     5432,
		DBName:     "stand_leads",
		DBUser:     "postgres",
		DBPassword: "secret",
		DBMaxConns: 12,
	}
}

func TestPoolConfig(t *testing.T) {
	pc, err := poolConfig(testConfig())
	require.NoError(t, err)

	assert.Equal(t, int32(12), pc.MaxConns)
	assert.Equal(t, int32(2), pc.MinConns)
	assert.Equal(t, "stand_leads", pc.ConnConfig.Database)
}

func TestPoolConfigInLambda(t *testing.T) {
	cfg := testConfig()
	cfg.LambdaFunction = "stand-lead-engine-dev-lead-intake"

	pc, err := poolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(2), pc.MaxConns)
	assert.Equal(t, int32(1), pc.MinConns)
}

func TestPoolConfigDefaultsMaxConns(t *testing.T) {
	cfg := testConfig()
	cfg.DBMaxConns = 0

	pc, err := poolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(10), pc.MaxConns)
}
