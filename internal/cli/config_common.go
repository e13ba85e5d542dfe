package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/darwinyusef/termsim/internal/config"
	"github.com/darwinyusef/termsim/pkg/termsim"
)

// loadConfig discovers termsim.yaml, lets explicitly set persistent flags
// override it and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Discover(rootFlags.configPath)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("%w: %w", termsim.ErrInvalidConfig, err)
		}
		return nil, err
	}

	cfg.Log.Format = resolveFlagString(cmd, "log-format", rootFlags.logFormat, cfg.Log.Format)
	cfg.Log.Level = resolveFlagString(cmd, "log-level", rootFlags.logLevel, cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

// resolveFlagString returns the flag value if it was set on the command
// line, the configured value otherwise.
func resolveFlagString(cmd *cobra.Command, name, flagValue, configured string) string {
	if flagChanged(cmd, name) || configured == "" {
		if flagValue != "" {
			return flagValue
		}
	}
	return configured
}

// flagChanged reports whether name was set on cmd or any of its parents.
func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := cmd.InheritedFlags().Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}
