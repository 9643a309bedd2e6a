package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/postpilot/composer/internal/config"
)

// NewSecretCommand manages the keychain entries the config file refers to:
// the publish API token and the optional AI API key.
func NewSecretCommand(runtime Runtime) *cobra.Command {
	return newSecretCommand(runtime, config.NewKeychainStore())
}

func newSecretCommand(runtime Runtime, store config.SecretStore) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage keychain secrets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return secretUsageError(cmd)
		},
	}
	cmd.AddCommand(newSecretSetCommand(runtime, store))
	cmd.AddCommand(newSecretDeleteCommand(runtime, store))
	return cmd
}

// secretUsageError reports the missing set/delete subcommand together with
// the usage help on stderr, then surfaces an input error that main will
// not print again.
func secretUsageError(cmd *cobra.Command) error {
	const message = "secret requires a subcommand"
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	fmt.Fprintln(cmd.ErrOrStderr(), message)

	stdout := cmd.OutOrStdout()
	cmd.SetOut(cmd.ErrOrStderr())
	defer cmd.SetOut(stdout)
	if err := cmd.Help(); err != nil {
		return WrapExit(ExitCodeUnknown, fmt.Errorf("%s: print help: %w", message, err))
	}
	return &printedError{err: WrapExit(ExitCodeInput, errors.New(message))}
}

func newSecretSetCommand(runtime Runtime, store config.SecretStore) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("set <%s|%s>", config.SecretPublishToken, config.SecretOpenAIKey),
		Short: "Store a secret value read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commandName := "composer secret set"

			ref, err := config.NewSecretRef(name, args[0])
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeInput, err))
			}

			reader := bufio.NewReader(cmd.InOrStdin())
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeInput, fmt.Errorf("read secret value from stdin: %w", err)))
			}
			value := strings.TrimSpace(line)

			if err := store.Set(ref, value); err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeAuth, err))
			}
			return writeSuccess(cmd, runtime, commandName, map[string]any{"ref": ref})
		},
	}

	cmd.Flags().StringVar(&name, "name", "default", "Secret name within the keychain service")
	return cmd
}

func newSecretDeleteCommand(runtime Runtime, store config.SecretStore) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("delete <%s|%s>", config.SecretPublishToken, config.SecretOpenAIKey),
		Short: "Remove a secret from the keychain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commandName := "composer secret delete"

			ref, err := config.NewSecretRef(name, args[0])
			if err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeInput, err))
			}
			if err := store.Delete(ref); err != nil {
				return writeCommandError(cmd, runtime, commandName, WrapExit(ExitCodeAuth, err))
			}
			return writeSuccess(cmd, runtime, commandName, map[string]any{"ref": ref, "deleted": true})
		},
	}

	cmd.Flags().StringVar(&name, "name", "default", "Secret name within the keychain service")
	return cmd
}
