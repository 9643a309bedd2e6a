package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/postpilot/composer/internal/config"
	"github.com/postpilot/composer/internal/media"
	"github.com/postpilot/composer/internal/publish"
)

type uploadDeps struct {
	secrets  config.SecretStore
	newStore func(cfg *config.Config, token string) media.Store
}

func defaultUploadDeps() uploadDeps {
	return uploadDeps{
		secrets: config.NewKeychainStore(),
		newStore: func(cfg *config.Config, token string) media.Store {
			baseURL := cfg.PublishAPI.BaseURL
			if baseURL == "" {
				baseURL = publish.DefaultBaseURL
			}
			return media.NewHTTPStore(baseURL, token)
		},
	}
}

// NewUploadCommand pushes local media files to the publish API's media
// store and prints the hosted URLs for use in a draft's media list.
func NewUploadCommand(runtime Runtime) *cobra.Command {
	return newUploadCommand(runtime, defaultUploadDeps())
}

func newUploadCommand(runtime Runtime, deps uploadDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file> [file...]",
		Short: "Upload media files and print their hosted URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commandName := "composer upload"

			cfg, err := runtime.loadConfig()
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, err)
			}
			if cfg.PublishAPI.TokenRef == "" {
				return writeCommandError(cmd, runtime, commandName,
					WrapExit(ExitCodeAuth, fmt.Errorf("publish_api.token_ref is not configured; run composer secret set %s", config.SecretPublishToken)))
			}
			token, err := deps.secrets.Get(cfg.PublishAPI.TokenRef)
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeAuth, err))
			}

			store := deps.newStore(cfg, token)
			rows := make([]map[string]any, 0, len(args))
			for _, path := range args {
				item, err := store.Upload(cmd.Context(), path)
				if err != nil {
					return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeAPI, fmt.Errorf("upload %s: %w", path, err)))
				}
				rows = append(rows, map[string]any{
					"file": path,
					"url":  item.URL,
					"type": item.Type,
				})
			}
			return writeSuccess(cmd, runtime, commandName, rows)
		},
	}
}
