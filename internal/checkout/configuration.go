package checkout

import (
	"strings"
	"time"
)

const (
	configurationRemoteKeyConstant      = "remote"
	configurationRebaseKeyConstant      = "rebase"
	configurationSettleDelayKeyConstant = "settle_delay"
	configurationKeySeparatorConstant   = "."
)

// CommandConfiguration captures persisted defaults for the checkout command.
type CommandConfiguration struct {
	RemoteName  string        `mapstructure:"remote"`
	Rebase      bool          `mapstructure:"rebase"`
	SettleDelay time.Duration `mapstructure:"settle_delay"`
}

// DefaultCommandConfiguration provides baseline configuration values for the checkout command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RemoteName:  defaultRemoteNameConstant,
		Rebase:      false,
		SettleDelay: defaultSettleDelayConstant,
	}
}

// DefaultConfigurationValues returns the defaults keyed under rootKey for the configuration loader.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationRemoteKeyConstant:      defaults.RemoteName,
		rootKey + configurationKeySeparatorConstant + configurationRebaseKeyConstant:      defaults.Rebase,
		rootKey + configurationKeySeparatorConstant + configurationSettleDelayKeyConstant: defaults.SettleDelay,
	}
}

// Sanitize trims the remote name and falls back to defaults for empty or negative values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	if len(sanitized.RemoteName) == 0 {
		sanitized.RemoteName = defaultRemoteNameConstant
	}
	if sanitized.SettleDelay < 0 {
		sanitized.SettleDelay = 0
	}
	return sanitized
}
