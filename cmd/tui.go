package cmd

import (
	"fmt"

	"ruleform/internal/logger"
	"ruleform/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var snapshotDir string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive rule editor (same as default)",
	Long: `Start the terminal UI: create a policy rule in the rule form or
browse the column catalog and write snapshots of it.

Note: This is the same as running the program without any commands.`,
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&snapshotDir, "snapshot-dir", "./snapshots", "Directory for catalog snapshots written from the UI")
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg := settings()

	// the UI owns the terminal
	if err := logger.ToFile(cfg.LogFile); err != nil {
		return err
	}
	defer logger.Close()

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	model := tui.NewModel(tui.Options{Catalog: cat, SnapshotDir: snapshotDir})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
