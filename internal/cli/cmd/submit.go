package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/postpilot/composer/internal/config"
	"github.com/postpilot/composer/internal/ledger"
	"github.com/postpilot/composer/internal/publish"
	"github.com/postpilot/composer/internal/submit"
)

type submitResult struct {
	BatchID         string                 `json:"batch_id"`
	SkippedAccounts int                    `json:"skipped_accounts,omitempty"`
	Dispatch        *submit.DispatchResult `json:"dispatch"`
}

// submitDeps isolates the command's collaborators so tests can run it
// without a keychain, network, or sqlite file.
type submitDeps struct {
	secrets      config.SecretStore
	newPublisher func(cfg *config.Config, token string) submit.Publisher
	newRecorder  func(path string) (submit.Recorder, error)
}

func defaultSubmitDeps() submitDeps {
	return submitDeps{
		secrets: config.NewKeychainStore(),
		newPublisher: func(cfg *config.Config, token string) submit.Publisher {
			baseURL := cfg.PublishAPI.BaseURL
			if baseURL == "" {
				baseURL = publish.DefaultBaseURL
			}
			return publish.NewClient(&http.Client{Timeout: 30 * time.Second}, baseURL, token)
		},
		newRecorder: func(path string) (submit.Recorder, error) {
			return ledger.Open(path)
		},
	}
}

// NewSubmitCommand builds the draft's requests and dispatches them. The
// batch succeeds when at least one brand bucket is accepted; per-bucket
// failures are reported in the result rather than failing the command.
func NewSubmitCommand(runtime Runtime) *cobra.Command {
	return newSubmitCommand(runtime, defaultSubmitDeps())
}

func newSubmitCommand(runtime Runtime, deps submitDeps) *cobra.Command {
	var brandScope string
	var publishAtFlag string
	var ledgerPath string

	cmd := &cobra.Command{
		Use:   "submit <draft.yaml>",
		Short: "Build the draft's submission requests and dispatch them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commandName := "composer submit"

			cfg, err := runtime.loadConfig()
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, err)
			}
			directory, err := cfg.Directory()
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeConfig, err))
			}

			draft, err := LoadDraft(args[0])
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeInput, err))
			}
			session, err := draft.BuildSession()
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeInput, err))
			}
			publishAt, err := resolvePublishAt(draft, publishAtFlag)
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeInput, err))
			}

			if cfg.PublishAPI.TokenRef == "" {
				return writeCommandError(cmd, runtime, commandName,
					WrapExit(ExitCodeAuth, fmt.Errorf("publish_api.token_ref is not configured; run composer secret set %s", config.SecretPublishToken)))
			}
			token, err := deps.secrets.Get(cfg.PublishAPI.TokenRef)
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeAuth, err))
			}

			built, err := submit.Build(session, directory, submit.BuildOptions{
				BrandScope: brandScope,
				PublishAt:  publishAt,
			})
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeInput, err))
			}

			dispatcher := submit.NewDispatcher(deps.newPublisher(cfg, token))
			dispatcher.Logger = log.Default()
			if recorder, recErr := openRecorder(deps, ledgerPath); recErr != nil {
				log.Default().Warn("dispatch ledger unavailable", "error", recErr)
			} else {
				dispatcher.Recorder = recorder
			}

			dispatched, err := dispatcher.Dispatch(cmd.Context(), built.Requests)
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeAPI, err))
			}
			return writeSuccess(cmd, runtime, commandName, submitResult{
				BatchID:         built.BatchID,
				SkippedAccounts: built.SkippedAccounts,
				Dispatch:        dispatched,
			})
		},
	}

	cmd.Flags().StringVar(&brandScope, "brand", "", "Limit the build to one brand's accounts")
	cmd.Flags().StringVar(&publishAtFlag, "at", "", "Schedule time (RFC3339), overrides the draft's schedule_at")
	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "Dispatch ledger path (defaults to ~/.composer/ledger.db)")
	return cmd
}

func openRecorder(deps submitDeps, path string) (submit.Recorder, error) {
	if path == "" {
		defaultPath, err := ledger.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}
	return deps.newRecorder(path)
}
