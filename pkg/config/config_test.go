package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "local", cfg.Upload.Driver)
	assert.Equal(t, "public/uploads", cfg.Upload.LocalDir)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpirationTime)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("UPLOAD_DRIVER", "remote")
	t.Setenv("DB_MAX_OPEN_CONNS", "25")
	t.Setenv("DB_CONN_MAX_LIFETIME", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "remote", cfg.Upload.Driver)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
}

func TestGetDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     "5432",
		User:     "app",
		Password: "pw",
		Name:     "alumglass_db",
		SSLMode:  "require",
	}
	assert.Equal(t,
		"host=db.internal port=5432 user=app password=pw dbname=alumglass_db sslmode=require",
		d.GetDSN())
}
