package cmd

import (
	"github.com/postpilot/composer/internal/config"
)

// Runtime carries the root command's persistent flag values into each
// subcommand. Pointers keep the values live across cobra's flag parsing.
type Runtime struct {
	ConfigPath *string
	Output     *string
	Verbose    *bool
}

func (r Runtime) configFile() (string, error) {
	if r.ConfigPath != nil && *r.ConfigPath != "" {
		return *r.ConfigPath, nil
	}
	return config.DefaultPath()
}

func (r Runtime) loadConfig() (*config.Config, error) {
	path, err := r.configFile()
	if err != nil {
		return nil, WrapExit(ExitCodeConfig, err)
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return nil, WrapExit(ExitCodeConfig, err)
	}
	return cfg, nil
}
