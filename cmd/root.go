package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"ruleform/internal/backup"
	"ruleform/internal/catalog"
	"ruleform/internal/config"
	"ruleform/internal/database"
	"ruleform/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	catalogFile   string
	catalogSource string
	dbURI         string
	dbName        string
	collection    string
	sqlDriver     string
	sqlDSN        string
	sqlDatasource string
	logFile       string
)

var rootCmd = &cobra.Command{
	Use:   "ruleform",
	Short: "Build policy rules from data-source columns",
	Long: `ruleform edits policy rules in a terminal form: policy table columns
are mapped onto data-source columns, joined, negated and aliased, then
compiled into a rule.

Running ruleform without a command starts the terminal UI.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := config.Default()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&catalogFile, "catalog", defaults.CatalogFile, "Catalog file (.json or .csv)")
	flags.StringVar(&catalogSource, "source", defaults.CatalogSource, "Catalog source: file, mongo or sql")
	flags.StringVarP(&dbURI, "db-uri", "u", defaults.DBURI, "MongoDB connection URI")
	flags.StringVarP(&dbName, "database", "d", defaults.DBName, "MongoDB database name")
	flags.StringVar(&collection, "collection", defaults.DBCollection, "MongoDB catalog collection")
	flags.StringVar(&sqlDriver, "sql-driver", defaults.SQLDriver, "SQL driver: sqlite3 or sqlserver")
	flags.StringVar(&sqlDSN, "sql-dsn", defaults.SQLDSN, "SQL connection string")
	flags.StringVar(&sqlDatasource, "sql-datasource", defaults.SQLDatasource, "Datasource name for introspected SQL tables")
	flags.StringVar(&logFile, "log-file", defaults.LogFile, "Log file used while the terminal UI runs")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(columnsCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(catalogCmd)
}

// initConfig loads .env and fills every setting whose flag was not given
// from the environment.
func initConfig() {
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found or error loading it: %v", err)
	}

	env := config.FromEnv()
	flags := rootCmd.PersistentFlags()
	fromEnv := func(dst *string, flag, value string) {
		if !flags.Changed(flag) {
			*dst = value
		}
	}
	fromEnv(&catalogFile, "catalog", env.CatalogFile)
	fromEnv(&catalogSource, "source", env.CatalogSource)
	fromEnv(&dbURI, "db-uri", env.DBURI)
	fromEnv(&dbName, "database", env.DBName)
	fromEnv(&collection, "collection", env.DBCollection)
	fromEnv(&sqlDriver, "sql-driver", env.SQLDriver)
	fromEnv(&sqlDSN, "sql-dsn", env.SQLDSN)
	fromEnv(&sqlDatasource, "sql-datasource", env.SQLDatasource)
	fromEnv(&logFile, "log-file", env.LogFile)
}

func settings() *config.Config {
	return &config.Config{
		CatalogFile:   catalogFile,
		CatalogSource: catalogSource,
		DBURI:         dbURI,
		DBName:        dbName,
		DBCollection:  collection,
		SQLDriver:     sqlDriver,
		SQLDSN:        sqlDSN,
		SQLDatasource: sqlDatasource,
		LogFile:       logFile,
	}
}

// loadCatalog reads the column catalog from the configured source. A file
// source without a file gives an empty catalog.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.CatalogSource {
	case config.SourceMongo:
		db, err := database.NewMongoDB(cfg.DBURI, cfg.DBName)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		defer db.Close()
		return db.LoadCatalog(cfg.DBCollection)

	case config.SourceSQL:
		db, err := database.OpenSQL(cfg.SQLDriver, cfg.SQLDSN)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return db.LoadCatalog(ctx, cfg.SQLDatasource)
	}

	if cfg.CatalogFile == "" {
		logger.Warn("No catalog file configured; suggestions will be empty")
		return &catalog.Catalog{}, nil
	}
	c, err := backup.ReadSnapshot(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return c, nil
}
