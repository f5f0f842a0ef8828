package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ventas-api/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SALE_NUMBER_PREFIX", "")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, config.SaleNumberSourceLocal, cfg.Sales.NumberSource)
	assert.Equal(t, 10*time.Second, cfg.Sales.TxTimeout)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_RedisRequiereDireccion(t *testing.T) {
	t.Setenv("SALE_NUMBER_SOURCE", "redis")
	t.Setenv("REDIS_ADDR", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_TimeoutInvalido(t *testing.T) {
	t.Setenv("SALE_TX_TIMEOUT_SECONDS", "0")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "pos", Password: "p@ss:w/rd", DBName: "ventas", SSLMode: "disable"}
	assert.Equal(t, "postgres://pos:p%40ss%3Aw%2Frd@db:5432/ventas?sslmode=disable", c.ConnectionString())
}
