package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ruleform/internal/catalog"
	"ruleform/internal/logger"
	"ruleform/internal/models"

	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
)

const (
	DriverSQLite    = "sqlite3"
	DriverSQLServer = "sqlserver"
)

// SQLSchema reads table and column names out of a relational database so
// they can be offered as a catalog datasource.
type SQLSchema struct {
	DB     *sql.DB
	Driver string
}

func OpenSQL(driver, dsn string) (*SQLSchema, error) {
	if driver != DriverSQLite && driver != DriverSQLServer {
		return nil, fmt.Errorf("unsupported SQL driver '%s': use %s or %s", driver, DriverSQLite, DriverSQLServer)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening %s database: %w", driver, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to %s database (ping failed): %w", driver, err)
	}

	logger.Info("Connected to %s database", driver)
	return &SQLSchema{DB: db, Driver: driver}, nil
}

func (s *SQLSchema) Close() error {
	return s.DB.Close()
}

// LoadCatalog lists every table and its columns, in ordinal order, under
// the given datasource name.
func (s *SQLSchema) LoadCatalog(ctx context.Context, datasource string) (*catalog.Catalog, error) {
	var (
		records []models.ColumnRecord
		err     error
	)
	switch s.Driver {
	case DriverSQLite:
		records, err = s.sqliteRecords(ctx, datasource)
	default:
		records, err = s.sqlServerRecords(ctx, datasource)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded %d columns from %s", len(records), s.Driver)
	return catalog.FromRecords(records), nil
}

func (s *SQLSchema) sqliteRecords(ctx context.Context, datasource string) ([]models.ColumnRecord, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	var records []models.ColumnRecord
	for _, table := range tables {
		columns, err := s.sqliteColumns(ctx, table)
		if err != nil {
			return nil, err
		}
		if len(columns) == 0 {
			records = append(records, models.ColumnRecord{Datasource: datasource, Table: table})
		}
		for _, c := range columns {
			records = append(records, models.ColumnRecord{Datasource: datasource, Table: table, Column: c})
		}
	}
	return records, nil
}

func (s *SQLSchema) sqliteColumns(ctx context.Context, table string) ([]string, error) {
	query := fmt.Sprintf(`PRAGMA table_info("%s")`, strings.ReplaceAll(table, `"`, `""`))
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    interface{}
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}

func (s *SQLSchema) sqlServerRecords(ctx context.Context, datasource string) ([]models.ColumnRecord, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT TABLE_SCHEMA, TABLE_NAME, COLUMN_NAME
		FROM INFORMATION_SCHEMA.COLUMNS
		ORDER BY TABLE_SCHEMA, TABLE_NAME, ORDINAL_POSITION`)
	if err != nil {
		return nil, fmt.Errorf("failed to query INFORMATION_SCHEMA: %w", err)
	}
	defer rows.Close()

	var records []models.ColumnRecord
	for rows.Next() {
		var schema, table, column string
		if err := rows.Scan(&schema, &table, &column); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		records = append(records, models.ColumnRecord{
			Datasource: datasource,
			Table:      schema + "." + table,
			Column:     column,
		})
	}
	return records, rows.Err()
}
