package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ruleform/internal/catalog"
	"ruleform/internal/csv"
	"ruleform/internal/models"
)

const timestampLayout = "20060102_150405"

// Store is the catalog collection a snapshot is taken from or restored into.
type Store interface {
	LoadCatalog(collectionName string) (*catalog.Catalog, error)
	ImportCatalog(collectionName string, records []models.ColumnRecord, dropExisting bool) (int, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// SnapshotCollection writes the catalog held in collectionName to outputDir.
func (s *Service) SnapshotCollection(collectionName, outputDir, format string) (string, error) {
	c, err := s.store.LoadCatalog(collectionName)
	if err != nil {
		return "", fmt.Errorf("failed to load catalog: %w", err)
	}
	return WriteSnapshot(c, collectionName, outputDir, format, time.Now())
}

// RestoreCollection loads a JSON or CSV snapshot into collectionName and
// returns how many records were new.
func (s *Service) RestoreCollection(collectionName, inputFile string, dropExisting bool) (int, error) {
	format := FormatOf(inputFile)
	if err := ValidateSnapshotFile(inputFile, format); err != nil {
		return 0, err
	}

	c, err := ReadSnapshot(inputFile)
	if err != nil {
		return 0, err
	}

	n, err := s.store.ImportCatalog(collectionName, c.Records(), dropExisting)
	if err != nil {
		return n, fmt.Errorf("restore failed: %w", err)
	}
	return n, nil
}

// WriteSnapshot stores c as catalog_<name>_<timestamp>.<format> in
// outputDir and returns the file path.
func WriteSnapshot(c *catalog.Catalog, name, outputDir, format string, now time.Time) (string, error) {
	if format != "json" && format != "csv" {
		return "", fmt.Errorf("unsupported snapshot format '%s'", format)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := fmt.Sprintf("catalog_%s_%s.%s", name, now.Format(timestampLayout), format)
	path := filepath.Join(outputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer file.Close()

	if format == "csv" {
		err = csv.EncodeRecords(file, c.Records())
	} else {
		encoder := json.NewEncoder(file)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(c)
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("snapshot failed: %w", err)
	}

	return path, nil
}

// ReadSnapshot loads a catalog from a .json or .csv file.
func ReadSnapshot(path string) (*catalog.Catalog, error) {
	if FormatOf(path) == "csv" {
		return csv.NewParser(path).ParseCatalog()
	}
	return catalog.LoadFile(path)
}

// FormatOf guesses a snapshot format from the file extension.
func FormatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return "csv"
	}
	return "json"
}

func ValidateSnapshotFile(filename, expectedFormat string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("cannot open snapshot file: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return fmt.Errorf("cannot get file info: %w", err)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("snapshot file is empty")
	}

	extension := filepath.Ext(filename)
	if expectedFormat == "json" && extension != ".json" {
		return fmt.Errorf("expected JSON file but got %s", extension)
	}
	if expectedFormat == "csv" && extension != ".csv" {
		return fmt.Errorf("expected CSV file but got %s", extension)
	}

	return nil
}
