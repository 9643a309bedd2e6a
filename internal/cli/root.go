package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/postpilot/composer/internal/cli/cmd"
)

const appName = "composer"

type GlobalFlags struct {
	ConfigPath string
	Output     string
	Verbose    bool
}

func Execute() error {
	root := NewRootCommand()
	return root.Execute()
}

func NewRootCommand() *cobra.Command {
	flags := &GlobalFlags{}

	root := &cobra.Command{
		Use:               appName,
		Short:             "Compose, validate, and dispatch multi-platform social posts",
		Long:              "composer turns a single draft into per-platform posts: it detects and validates formats, applies unified or per-platform edits, and dispatches brand-scoped submission batches.",
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: applyGlobalFlags(flags),
	}

	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "Config file path (defaults to ~/.composer/config.yaml)")
	root.PersistentFlags().StringVar(&flags.Output, "output", "json", "Output format: json|table")
	root.PersistentFlags().BoolVar(&flags.Verbose, "verbose", false, "Enable debug logging")

	runtime := cmd.Runtime{
		ConfigPath: &flags.ConfigPath,
		Output:     &flags.Output,
		Verbose:    &flags.Verbose,
	}
	root.AddCommand(cmd.NewPlanCommand(runtime))
	root.AddCommand(cmd.NewGenerateCommand(runtime))
	root.AddCommand(cmd.NewSubmitCommand(runtime))
	root.AddCommand(cmd.NewUploadCommand(runtime))
	root.AddCommand(cmd.NewAccountsCommand(runtime))
	root.AddCommand(cmd.NewHistoryCommand(runtime))
	root.AddCommand(cmd.NewSecretCommand(runtime))

	return root
}

func applyGlobalFlags(flags *GlobalFlags) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, _ []string) error {
		switch flags.Output {
		case "json", "table":
		default:
			return WrapExit(ExitCodeInput, fmt.Errorf("invalid --output value %q; expected json|table", flags.Output))
		}
		if flags.Verbose {
			log.SetLevel(log.DebugLevel)
		}
		return nil
	}
}
