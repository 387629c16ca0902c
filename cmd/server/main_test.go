package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codgrandprix/server/internal/app"
)

func TestConvertDatabaseConfig(t *testing.T) {
	cfg := &app.Config{}
	cfg.Database.Driver = ""
	dbCfg := convertDatabaseConfig(cfg)
	require.Equal(t, "sqlite", dbCfg.Driver)

	cfg = &app.Config{}
	cfg.Database.Driver = "PostgreSQL"
	cfg.Database.Postgres = app.DBAuthConfig{
		Host:     " db.example.com ",
		Port:     5433,
		Database: "codgp",
		Username: "codgp",
		Password: "secret",
	}
	dbCfg = convertDatabaseConfig(cfg)
	require.Equal(t, "postgres", dbCfg.Driver)
	require.Equal(t, "db.example.com", dbCfg.Host)
	require.Equal(t, 5433, dbCfg.Port)
	require.Equal(t, "codgp", dbCfg.Name)

	cfg = &app.Config{}
	cfg.Database.Driver = "mysql"
	cfg.Database.MySQL = app.DBAuthConfig{Host: "mysql.local", Port: 3306, Database: "codgp"}
	dbCfg = convertDatabaseConfig(cfg)
	require.Equal(t, "mysql", dbCfg.Driver)
	require.Equal(t, "mysql.local", dbCfg.Host)

	cfg = &app.Config{}
	cfg.Database.Driver = "oracle"
	dbCfg = convertDatabaseConfig(cfg)
	require.Equal(t, "oracle", dbCfg.Driver)
}

func TestEnsureSecretsPresent(t *testing.T) {
	require.Error(t, ensureSecretsPresent(nil))

	cfg := &app.Config{}
	require.Error(t, ensureSecretsPresent(cfg))

	cfg.Auth.JWT.Secret = "  "
	require.Error(t, ensureSecretsPresent(cfg))

	cfg.Auth.JWT.Secret = " top-secret "
	require.NoError(t, ensureSecretsPresent(cfg))
	require.Equal(t, "top-secret", cfg.Auth.JWT.Secret)
}
