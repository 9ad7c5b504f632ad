// Package config reads application settings from the environment, which
// the CLI populates from an optional .env file before commands run.
package config

import (
	"fmt"
	"os"
)

const (
	SourceFile  = "file"
	SourceMongo = "mongo"
	SourceSQL   = "sql"
)

// Config holds where the column catalog comes from and where logs go.
type Config struct {
	CatalogFile   string
	CatalogSource string
	DBURI         string
	DBName        string
	DBCollection  string
	SQLDriver     string
	SQLDSN        string
	// SQLDatasource names the datasource the introspected tables belong to.
	SQLDatasource string
	LogFile       string
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		CatalogSource: SourceFile,
		DBURI:         "mongodb://localhost:27017",
		DBName:        "ruleform",
		DBCollection:  "columns",
		SQLDriver:     "sqlite3",
		SQLDatasource: "db",
		LogFile:       "ruleform.log",
	}
}

// LoadConfig overlays environment variables on the defaults and validates
// the result.
func LoadConfig() (*Config, error) {
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv overlays environment variables on the defaults without validating.
func FromEnv() *Config {
	cfg := Default()

	setFromEnv(&cfg.CatalogFile, "CATALOG_FILE")
	setFromEnv(&cfg.CatalogSource, "CATALOG_SOURCE")
	setFromEnv(&cfg.DBURI, "DB_URI")
	setFromEnv(&cfg.DBName, "DB_NAME")
	setFromEnv(&cfg.DBCollection, "DB_COLLECTION")
	setFromEnv(&cfg.SQLDriver, "SQL_DRIVER")
	setFromEnv(&cfg.SQLDSN, "SQL_DSN")
	setFromEnv(&cfg.SQLDatasource, "SQL_DATASOURCE")
	setFromEnv(&cfg.LogFile, "LOG_FILE")
	return cfg
}

// Validate checks that the chosen catalog source has what it needs.
func (c *Config) Validate() error {
	switch c.CatalogSource {
	case SourceFile:
		return nil
	case SourceMongo:
		if c.DBURI == "" || c.DBName == "" || c.DBCollection == "" {
			return fmt.Errorf("catalog source %q needs DB_URI, DB_NAME and DB_COLLECTION", c.CatalogSource)
		}
	case SourceSQL:
		if c.SQLDSN == "" {
			return fmt.Errorf("catalog source %q needs SQL_DSN", c.CatalogSource)
		}
	default:
		return fmt.Errorf("unknown catalog source %q: use %s, %s or %s", c.CatalogSource, SourceFile, SourceMongo, SourceSQL)
	}
	return nil
}

func setFromEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
