package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"CATALOG_FILE", "CATALOG_SOURCE", "DB_URI", "DB_NAME", "DB_COLLECTION", "SQL_DRIVER", "SQL_DSN", "SQL_DATASOURCE", "LOG_FILE"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", SourceSQL)
	t.Setenv("SQL_DRIVER", "sqlserver")
	t.Setenv("SQL_DSN", "sqlserver://sa:pw@localhost:1433?database=congress")
	t.Setenv("LOG_FILE", "/tmp/rf.log")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, SourceSQL, cfg.CatalogSource)
	assert.Equal(t, "sqlserver", cfg.SQLDriver)
	assert.Equal(t, "/tmp/rf.log", cfg.LogFile)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "file", mutate: func(*Config) {}},
		{name: "mongo", mutate: func(c *Config) { c.CatalogSource = SourceMongo }},
		{name: "mongo without collection", mutate: func(c *Config) { c.CatalogSource = SourceMongo; c.DBCollection = "" }, wantErr: true},
		{name: "sql without dsn", mutate: func(c *Config) { c.CatalogSource = SourceSQL }, wantErr: true},
		{name: "unknown", mutate: func(c *Config) { c.CatalogSource = "ldap" }, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
