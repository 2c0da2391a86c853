package container

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/surat-menyurat/internal/domain/entity"
	"github.com/garyjia/surat-menyurat/internal/domain/event"
)

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.BcryptCost = 4
	return cfg
}

func TestNewContainer_Validation(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(testConfig(), nil)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.Auth.JWTSecret = ""
	_, err = NewContainer(cfg, zap.NewNop())
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Store.Driver = "sqlite"
	_, err = NewContainer(cfg, zap.NewNop())
	assert.Error(t, err, "sqlite needs a path")
}

func TestContainer_Lifecycle(t *testing.T) {
	c, err := NewContainer(testConfig(), zap.NewNop())
	require.NoError(t, err)
	assert.False(t, c.Ready())

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	assert.True(t, c.Ready())
	assert.Error(t, c.Start(ctx), "second start")

	health := c.Health(ctx)
	assert.True(t, health.Overall)
	assert.Equal(t, "memory", health.Components["store"].Message)

	svc := c.HTTPServices()
	assert.NotNil(t, svc.Workflow)
	assert.NotNil(t, svc.Auth)
	require.NotNil(t, svc.Setup)
	assert.NoError(t, svc.Setup(ctx))

	handlers := c.Dispatcher().ListHandlers(event.TypeLetterApproved)
	names := make([]string, 0, len(handlers))
	for _, h := range handlers {
		names = append(names, h.Name)
	}
	assert.ElementsMatch(t, []string{"audit_log", "cc_notify"}, names)
	assert.Len(t, c.Dispatcher().ListHandlers(event.TypeLetterSent), 1)

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close(), "second close")
	assert.Error(t, c.Start(ctx), "start after close")
}

func TestContainer_SQLiteDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Driver = "sqlite"
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "surat.db")

	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))

	health := c.Health(context.Background())
	assert.True(t, health.Components["database"].Healthy)

	require.NoError(t, c.Close())
}

func TestProvideStore_UnconfiguredSheets(t *testing.T) {
	bundle, err := ProvideStore(context.Background(), &StoreConfig{Driver: "sheets"}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, bundle.Store)

	_, err = bundle.Store.ReadAll(context.Background(), "Users")
	assert.Error(t, err)
}

func TestCCResolver(t *testing.T) {
	c, err := NewContainer(testConfig(), zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	defer c.Close()

	repo := c.Repositories().Member
	require.NoError(t, repo.Create(ctx, &entity.Member{ID: "m1", Name: "Rina", Email: "rina@example.org", Role: "Bendahara"}))
	require.NoError(t, repo.Create(ctx, &entity.Member{ID: "m2", Name: "Dodi", Email: "dodi@example.org", Role: "Anggota"}))

	got, err := ccResolver(c.Services().Members)(ctx, []string{"m2", "missing", "m1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Dodi", got[0].Name)
	assert.Equal(t, "rina@example.org", got[1].Email)
}
