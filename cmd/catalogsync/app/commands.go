package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dialoggauge/catalogsync/cmd/catalogsync/cmd/history"
	synccmd "github.com/dialoggauge/catalogsync/cmd/catalogsync/cmd/sync"
)

// CreateSyncCommand creates the sync command with app dependencies.
// Config-file and env settings become the flag defaults.
func (a *App) CreateSyncCommand() *cobra.Command {
	return synccmd.NewCommand(a, synccmd.Options{
		LocalDir:     a.config.LocalDir,
		CanonicalDir: a.config.CanonicalDir,
		OutputDir:    a.config.OutputDir,
		HistoryPath:  a.config.HistoryPath,
		Concurrent:   a.config.Concurrent,
		SortByID:     a.config.SortByID,
		Renumber:     a.config.Renumber,
	})
}

// CreateHistoryCommand creates the history command with app dependencies.
func (a *App) CreateHistoryCommand() *cobra.Command {
	return history.NewCommand(a, a.config.HistoryPath)
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "catalogsync %s (commit %s, built %s)\n",
				a.version, a.commit, a.date)
		},
	}
}
