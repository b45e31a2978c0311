package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/persistence"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/providers/ledger"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Driver = "memory"
	cfg.Store.FileDir = t.TempDir()
	cfg.RateLimit.Enabled = false
	return cfg
}

func TestOpenSlot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name   string
		cfg    config.StoreConfig
		driver persistence.Driver
	}{
		{"memory", config.StoreConfig{Driver: "memory"}, persistence.DriverMemory},
		{"file", config.StoreConfig{Driver: "file", FileDir: filepath.Join(dir, "files"), Compress: true}, persistence.DriverFile},
		{"sqlite", config.StoreConfig{Driver: "sqlite", SQLitePath: filepath.Join(dir, "nested", "registry.db")}, persistence.DriverSQLite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, err := OpenSlot(ctx, tt.cfg)
			require.NoError(t, err)
			defer slot.Close()
			assert.Equal(t, tt.driver, slot.Driver())

			require.NoError(t, slot.Save(ctx, "k", []byte("v")))
			got, err := slot.Load(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("v"), got)
		})
	}

	_, err := OpenSlot(ctx, config.StoreConfig{Driver: "tape"})
	assert.Error(t, err)
}

func TestNewGateway(t *testing.T) {
	g, err := NewGateway(config.LedgerConfig{Mode: "simulated", NetworkID: "devnet"}, nil)
	require.NoError(t, err)
	receipt, err := g.Anchor(context.Background(), ledger.AnchorRequest{Kind: ledger.KindAgent, SubjectID: "a", ContentHash: "h"})
	require.NoError(t, err)
	assert.Equal(t, "devnet", receipt.NetworkID)

	g, err = NewGateway(config.LedgerConfig{Mode: "http", Endpoint: "http://ledger.local"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ledger.HTTPGateway{}, g)

	_, err = NewGateway(config.LedgerConfig{Mode: "http"}, nil)
	assert.Error(t, err)
	_, err = NewGateway(config.LedgerConfig{Mode: "mainnet"}, nil)
	assert.Error(t, err)
}

func TestBuildSeedsAndPersists(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Store.Driver = "file"

	seedDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(seedDir, "extra.yaml"), []byte("- name: Fixture Bot\n  type: fixture\n"), 0o600))
	cfg.Store.SeedDir = seedDir

	c, err := Build(ctx, cfg, zap.NewNop(), nil)
	require.NoError(t, err)

	seeded := c.Store.Len()
	assert.Equal(t, len(registry.DefaultSeed())+1, seeded)
	fixtures := c.Store.Filter(types.AgentFilter{Type: "fixture"})
	require.Len(t, fixtures, 1)
	assert.Equal(t, "Fixture Bot", fixtures[0].Name)

	_, err = c.Store.Create(ctx, types.AgentInput{Name: "Persisted"})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	// reopening the same directory restores instead of reseeding
	c, err = Build(ctx, cfg, zap.NewNop(), nil)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, seeded+1, c.Store.Len())
	assert.Len(t, c.Store.Search("persisted"), 1)
}

func TestBuildRejectsBadSeedDir(t *testing.T) {
	cfg := testConfig(t)
	seedDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(seedDir, "broken.json"), []byte("{"), 0o600))
	cfg.Store.SeedDir = seedDir

	_, err := Build(context.Background(), cfg, nil, nil)
	assert.Error(t, err)
}

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 1, Burst: 3}

	metrics := monitoring.NewMetrics()
	c, err := Build(context.Background(), cfg, zap.NewNop(), metrics)
	require.NoError(t, err)
	defer c.Close()

	router := NewRouter(cfg, c, zap.NewNop(), metrics, nil)
	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.1.1.1:5000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, get("/health").Code)
	assert.Equal(t, http.StatusOK, get("/api/agents").Code)

	w := get("/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "agentregistry_http_requests_total")
	assert.Contains(t, w.Body.String(), "agentregistry_agents")

	assert.Equal(t, http.StatusTooManyRequests, get("/health").Code)
}
