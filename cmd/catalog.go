package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"ruleform/internal/backup"
	"ruleform/internal/database"
	"ruleform/internal/logger"

	"github.com/spf13/cobra"
)

var (
	showTables       bool
	outputDir        string
	exportFormat     string
	inputFile        string
	dropExisting     bool
	skipConfirmation bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect, export and import the column catalog",
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List the column (or table) candidates offered by the form",
	RunE:  runCatalogShow,
}

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the configured catalog to a timestamped snapshot file",
	RunE:  runCatalogExport,
}

var catalogImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON or CSV catalog file into the MongoDB catalog collection",
	RunE:  runCatalogImport,
}

func init() {
	catalogShowCmd.Flags().BoolVar(&showTables, "tables", false, "List tables instead of columns")

	catalogExportCmd.Flags().StringVarP(&outputDir, "output", "o", "./snapshots", "Output directory for snapshot files")
	catalogExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Snapshot format: json or csv")

	catalogImportCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Catalog file to import (required)")
	catalogImportCmd.Flags().BoolVar(&dropExisting, "drop", false, "Drop existing collection before import")
	catalogImportCmd.Flags().BoolVar(&skipConfirmation, "yes", false, "Skip confirmation prompts")
	catalogImportCmd.MarkFlagRequired("input")

	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogExportCmd)
	catalogCmd.AddCommand(catalogImportCmd)
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog(settings())
	if err != nil {
		return err
	}

	names := cat.ColumnNames()
	if showTables {
		names = cat.TableNames()
	}
	for _, n := range names {
		fmt.Fprintln(cmd.OutOrStdout(), n)
	}
	return nil
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	cfg := settings()
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	path, err := backup.WriteSnapshot(cat, snapshotName(cfg.CatalogSource), outputDir, exportFormat, time.Now())
	if err != nil {
		return err
	}
	logger.Info("Snapshot written: %s", path)
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func snapshotName(source string) string {
	if source == "" {
		return "catalog"
	}
	return source
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		return fmt.Errorf("catalog file does not exist: %s", inputFile)
	}

	format := backup.FormatOf(inputFile)
	if err := backup.ValidateSnapshotFile(inputFile, format); err != nil {
		return fmt.Errorf("catalog file validation failed: %w", err)
	}

	if !skipConfirmation {
		logger.Info("About to import %s (%s) into %s.%s", inputFile, format, dbName, collection)
		if dropExisting {
			logger.Warn("Existing collection %s will be DROPPED", collection)
		}
		if !confirmAction("Do you want to continue?") {
			fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled")
			return nil
		}
	}

	db, err := database.NewMongoDB(dbURI, dbName)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer db.Close()

	n, err := backup.NewService(db).RestoreCollection(collection, inputFile, dropExisting)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d new records into %s\n", n, collection)
	return nil
}

func confirmAction(message string) bool {
	fmt.Printf("%s (y/N): ", message)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
