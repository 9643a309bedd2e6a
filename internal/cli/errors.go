package cli

import "github.com/postpilot/composer/internal/cli/cmd"

// Exit codes are defined next to the commands that raise them; this package
// re-exports them for main.
const (
	ExitCodeUnknown = cmd.ExitCodeUnknown
	ExitCodeConfig  = cmd.ExitCodeConfig
	ExitCodeAuth    = cmd.ExitCodeAuth
	ExitCodeInput   = cmd.ExitCodeInput
	ExitCodeAPI     = cmd.ExitCodeAPI
)

type ExitError = cmd.ExitError

func WrapExit(code int, err error) error {
	return cmd.WrapExit(code, err)
}
