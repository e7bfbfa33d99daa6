// File: internal/config/humanoid_config.go
// This file defines the HumanoidConfig struct, which controls how text is typed
// into the page. When enabled, keys are sent one at a time with a normally
// distributed hold time instead of as a single burst.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// HumanoidConfig holds the typing cadence parameters.
type HumanoidConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// KeyHoldMeanMs and KeyHoldStdDevMs describe the per-key delay distribution.
	KeyHoldMeanMs   float64 `mapstructure:"key_hold_mean_ms" yaml:"key_hold_mean_ms"`
	KeyHoldStdDevMs float64 `mapstructure:"key_hold_std_dev_ms" yaml:"key_hold_std_dev_ms"`
	// KeyHoldMinMs is the floor applied after sampling.
	KeyHoldMinMs float64 `mapstructure:"key_hold_min_ms" yaml:"key_hold_min_ms"`
}

func setHumanoidDefaults(v *viper.Viper) {
	v.SetDefault("browser.humanoid.enabled", false)
	v.SetDefault("browser.humanoid.key_hold_mean_ms", 90.0)
	v.SetDefault("browser.humanoid.key_hold_std_dev_ms", 30.0)
	v.SetDefault("browser.humanoid.key_hold_min_ms", 20.0)
}

// Validate checks the HumanoidConfig settings.
func (h *HumanoidConfig) Validate() error {
	if !h.Enabled {
		return nil
	}
	if h.KeyHoldMeanMs <= 0 {
		return fmt.Errorf("humanoid.key_hold_mean_ms must be positive")
	}
	if h.KeyHoldStdDevMs < 0 || h.KeyHoldMinMs < 0 {
		return fmt.Errorf("humanoid.key_hold_std_dev_ms and key_hold_min_ms must not be negative")
	}
	return nil
}
