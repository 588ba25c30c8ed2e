package pkg

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/intervention-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDatabase_SQLite(t *testing.T) {
	db, err := InitDatabase(&config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabaseURL:    "file::memory:",
		Environment:    "test",
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	assert.NoError(t, sqlDB.Ping())
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestNewRedisClient(t *testing.T) {
	client, err := NewRedisClient(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, client, "no URL disables the cache")

	_, err = NewRedisClient(context.Background(), &config.Config{RedisURL: "not a url"})
	assert.Error(t, err)
}
