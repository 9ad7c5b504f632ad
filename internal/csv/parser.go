package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"ruleform/internal/catalog"
	"ruleform/internal/models"

	"github.com/jszwec/csvutil"
)

// Parser reads catalog CSV files with a "datasource,table,column" header.
type Parser struct {
	filename string
}

func NewParser(filename string) *Parser {
	return &Parser{filename: filename}
}

func (p *Parser) ParseRecords() ([]models.ColumnRecord, error) {
	file, err := os.Open(p.filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return DecodeRecords(file)
}

func (p *Parser) ParseCatalog() (*catalog.Catalog, error) {
	records, err := p.ParseRecords()
	if err != nil {
		return nil, err
	}
	return catalog.FromRecords(records), nil
}

// DecodeRecords decodes catalog records from r, trimming surrounding
// whitespace from every value.
func DecodeRecords(r io.Reader) ([]models.ColumnRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	decoder, err := csvutil.NewDecoder(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder: %w", err)
	}

	var records []models.ColumnRecord
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode CSV: %w", err)
	}

	for i := range records {
		records[i].Datasource = strings.TrimSpace(records[i].Datasource)
		records[i].Table = strings.TrimSpace(records[i].Table)
		records[i].Column = strings.TrimSpace(records[i].Column)
	}
	return records, nil
}

// EncodeRecords writes records with the header DecodeRecords expects.
func EncodeRecords(w io.Writer, records []models.ColumnRecord) error {
	writer := csv.NewWriter(w)
	encoder := csvutil.NewEncoder(writer)
	if len(records) == 0 {
		if err := encoder.EncodeHeader(models.ColumnRecord{}); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	} else if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to encode CSV: %w", err)
	}
	writer.Flush()
	return writer.Error()
}
