package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/postpilot/composer/internal/ai"
	"github.com/postpilot/composer/internal/config"
	"github.com/postpilot/composer/internal/rules"
)

type generateResult struct {
	Platform   string              `json:"platform"`
	Generated  *ai.Generated       `json:"generated"`
	Validation map[string][]string `json:"validation"`
	Eligible   bool                `json:"eligible"`
}

type generateDeps struct {
	secrets      config.SecretStore
	newGenerator func(cfg *config.Config, apiKey string) (ai.Generator, error)
}

func defaultGenerateDeps() generateDeps {
	return generateDeps{
		secrets: config.NewKeychainStore(),
		newGenerator: func(cfg *config.Config, apiKey string) (ai.Generator, error) {
			return ai.NewOpenAIGenerator(ai.Settings{
				APIKey:  apiKey,
				Model:   cfg.AI.Model,
				BaseURL: cfg.AI.BaseURL,
			})
		},
	}
}

// NewGenerateCommand drafts caption, title, and hashtags for one platform
// and merges them into the draft's session through the same propagation
// rules as manual edits, then reports the resulting validation state.
func NewGenerateCommand(runtime Runtime) *cobra.Command {
	return newGenerateCommand(runtime, defaultGenerateDeps())
}

func newGenerateCommand(runtime Runtime, deps generateDeps) *cobra.Command {
	var topic string
	var tone string
	var language string
	var platformFlag string

	cmd := &cobra.Command{
		Use:   "generate <draft.yaml>",
		Short: "Generate post content for a draft with the configured AI model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commandName := "composer generate"

			cfg, err := runtime.loadConfig()
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, err)
			}
			draft, err := LoadDraft(args[0])
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeInput, err))
			}
			session, err := draft.BuildSession()
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeInput, err))
			}

			platform, err := targetPlatform(session.Selected(), platformFlag)
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeInput, err))
			}

			if cfg.AI.APIKeyRef == "" {
				return writeCommandError(cmd, runtime, commandName,
					WrapExit(ExitCodeAuth, fmt.Errorf("ai.api_key_ref is not configured; run composer secret set %s", config.SecretOpenAIKey)))
			}
			apiKey, err := deps.secrets.Get(cfg.AI.APIKeyRef)
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeAuth, err))
			}
			generator, err := deps.newGenerator(cfg, apiKey)
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeConfig, err))
			}

			generated, err := generator.Generate(cmd.Context(), ai.Brief{
				Topic:     topic,
				Tone:      tone,
				Language:  language,
				Platform:  platform,
				MediaURLs: mediaURLs(session.EffectiveMedia(platform)),
			})
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeAPI, err))
			}
			if err := session.ApplyGenerated(platform, generated.Title, generated.Caption, generated.Hashtags); err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeInput, err))
			}

			return writeSuccess(cmd, runtime, commandName, generateResult{
				Platform:   string(platform),
				Generated:  generated,
				Validation: validationByName(session),
				Eligible:   session.SubmissionEligible(),
			})
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "What the post should be about (required)")
	cmd.Flags().StringVar(&tone, "tone", "", "Tone of voice, e.g. playful or formal")
	cmd.Flags().StringVar(&language, "language", "", "Output language (defaults to English)")
	cmd.Flags().StringVar(&platformFlag, "platform", "", "Target platform (defaults to the draft's primary platform)")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

func targetPlatform(selected []rules.Platform, flagValue string) (rules.Platform, error) {
	if flagValue != "" {
		platform, err := rules.ParsePlatform(flagValue)
		if err != nil {
			return "", err
		}
		for _, candidate := range selected {
			if candidate == platform {
				return platform, nil
			}
		}
		return "", fmt.Errorf("platform %q is not selected in the draft", platform)
	}
	if len(selected) == 0 {
		return "", fmt.Errorf("the draft selects no platforms")
	}
	return selected[0], nil
}

func mediaURLs(items []rules.MediaItem) []string {
	urls := make([]string, 0, len(items))
	for _, item := range items {
		urls = append(urls, item.URL)
	}
	return urls
}
