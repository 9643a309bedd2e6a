package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/postpilot/composer/internal/output"
	"github.com/postpilot/composer/internal/publish"
)

func writeSuccess(cmd *cobra.Command, runtime Runtime, commandName string, data any) error {
	envelope, err := output.NewEnvelope(commandName, true, data, nil)
	if err != nil {
		return err
	}
	return output.Write(cmd.OutOrStdout(), selectedOutputFormat(runtime), envelope)
}

// writeCommandError prints the failure envelope to stderr and returns the
// original error so the exit code survives to main.
func writeCommandError(cmd *cobra.Command, runtime Runtime, commandName string, err error) error {
	if err == nil {
		return nil
	}
	errorInfo := &output.ErrorInfo{
		Type:      "error",
		Message:   err.Error(),
		Retryable: false,
	}
	var apiErr *publish.APIError
	if errors.As(err, &apiErr) {
		errorInfo.Type = apiErr.Type
		errorInfo.Code = apiErr.Code
		errorInfo.Message = apiErr.Message
		errorInfo.RequestID = apiErr.RequestID
		errorInfo.StatusCode = apiErr.StatusCode
		errorInfo.Retryable = apiErr.Retryable
	}

	envelope, envErr := output.NewEnvelope(commandName, false, nil, errorInfo)
	if envErr != nil {
		return fmt.Errorf("%w (secondary output error: %v)", err, envErr)
	}
	if writeErr := output.Write(cmd.ErrOrStderr(), selectedOutputFormat(runtime), envelope); writeErr != nil {
		return fmt.Errorf("%w (secondary output error: %v)", err, writeErr)
	}
	return err
}

func selectedOutputFormat(runtime Runtime) string {
	if runtime.Output == nil {
		return "json"
	}
	if *runtime.Output == "" {
		return "json"
	}
	return *runtime.Output
}
