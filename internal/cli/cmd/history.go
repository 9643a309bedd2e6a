package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/postpilot/composer/internal/ledger"
)

// NewHistoryCommand queries the local dispatch ledger.
func NewHistoryCommand(runtime Runtime) *cobra.Command {
	var limit int
	var batchID string
	var ledgerPath string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently dispatched submission batches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			commandName := "composer history"

			path := ledgerPath
			if path == "" {
				defaultPath, err := ledger.DefaultPath()
				if err != nil {
					return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeConfig, err))
				}
				path = defaultPath
			}
			store, err := ledger.Open(path)
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeConfig, err))
			}

			var entries []ledger.Entry
			if batchID != "" {
				entries, err = store.ForBatch(cmd.Context(), batchID)
			} else {
				entries, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeUnknown, err))
			}

			rows := make([]map[string]any, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, map[string]any{
					"batch_id":   entry.BatchID,
					"brand_id":   entry.BrandID,
					"platforms":  entry.Platforms,
					"status":     entry.Status,
					"error":      entry.Error,
					"created_at": entry.CreatedAt.UTC().Format(time.RFC3339),
				})
			}
			return writeSuccess(cmd, runtime, commandName, rows)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries to show")
	cmd.Flags().StringVar(&batchID, "batch", "", "Show every bucket outcome for one batch id")
	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "Dispatch ledger path (defaults to ~/.composer/ledger.db)")
	return cmd
}
