package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/postpilot/composer/internal/compose"
	"github.com/postpilot/composer/internal/submit"
)

type planResult struct {
	Brand           string              `json:"brand"`
	EditMode        string              `json:"edit_mode"`
	Validation      map[string][]string `json:"validation"`
	Eligible        bool                `json:"eligible"`
	BatchID         string              `json:"batch_id,omitempty"`
	SkippedAccounts int                 `json:"skipped_accounts,omitempty"`
	Requests        []submit.Request    `json:"requests,omitempty"`
	BuildError      string              `json:"build_error,omitempty"`
}

// NewPlanCommand builds requests from a draft file without dispatching
// anything, so the full payload can be inspected first.
func NewPlanCommand(runtime Runtime) *cobra.Command {
	var brandScope string
	var publishAtFlag string

	cmd := &cobra.Command{
		Use:   "plan <draft.yaml>",
		Short: "Validate a draft and print the submission requests it would send",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commandName := "composer plan"

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

			result := planResult{
				Brand:      session.Brand(),
				EditMode:   string(session.EditMode()),
				Validation: validationByName(session),
				Eligible:   session.SubmissionEligible(),
			}
			built, buildErr := submit.Build(session, directory, submit.BuildOptions{
				BrandScope: brandScope,
				PublishAt:  publishAt,
			})
			if buildErr != nil {
				result.BuildError = buildErr.Error()
			} else {
				result.BatchID = built.BatchID
				result.SkippedAccounts = built.SkippedAccounts
				result.Requests = built.Requests
			}
			return writeSuccess(cmd, runtime, commandName, result)
		},
	}

	cmd.Flags().StringVar(&brandScope, "brand", "", "Limit the build to one brand's accounts")
	cmd.Flags().StringVar(&publishAtFlag, "at", "", "Schedule time (RFC3339), overrides the draft's schedule_at")
	return cmd
}

func validationByName(session *compose.Session) map[string][]string {
	byName := map[string][]string{}
	for platform, problems := range session.Validate() {
		byName[string(platform)] = problems
	}
	return byName
}

func resolvePublishAt(draft *Draft, flagValue string) (*time.Time, error) {
	if flagValue != "" {
		at, err := time.Parse(time.RFC3339, flagValue)
		if err != nil {
			return nil, fmt.Errorf("--at must be RFC3339: %w", err)
		}
		return &at, nil
	}
	return draft.PublishAt()
}
