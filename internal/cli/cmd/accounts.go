package cmd

import (
	"github.com/spf13/cobra"
)

// NewAccountsCommand lists the connected account directory from the config
// file, one row per platform/brand pair.
func NewAccountsCommand(runtime Runtime) *cobra.Command {
	var brandFilter string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List connected accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			commandName := "composer accounts"

			cfg, err := runtime.loadConfig()
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, err)
			}
			directory, err := cfg.Directory()
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeConfig, err))
			}

			rows := []map[string]any{}
			for _, account := range directory.All() {
				if brandFilter != "" && account.BrandID != brandFilter {
					continue
				}
				rows = append(rows, map[string]any{
					"platform":   string(account.Platform),
					"account_id": account.AccountID,
					"brand_id":   account.BrandID,
				})
			}
			return writeSuccess(cmd, runtime, commandName, rows)
		},
	}

	cmd.Flags().StringVar(&brandFilter, "brand", "", "Only show accounts for one brand")
	return cmd
}
