package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadDodge loads the dodge game configuration.
// Search order: customPath -> ~/.dodge/configs/dodge.yaml -> ./configs/dodge.yaml -> embedded default
func LoadDodge(customPath string) (DodgeConfig, error) {
	var cfg DodgeConfig

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("dodge.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/dodge.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultDodgeYAML, &cfg); err != nil {
		return DefaultDodgeConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".dodge", "configs", filename)
}

// ApplyDodgePreset modifies the config based on a difficulty preset.
func ApplyDodgePreset(cfg *DodgeConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Difficulty.Start = cfg.Difficulty.Min
		cfg.Session.Lives = 5
	case DifficultyHard:
		cfg.Difficulty.Start = 1.5
		cfg.Difficulty.UpPerSec = 0.03
		cfg.Session.Lives = 2
	case DifficultyFixed:
		// No progression: the ramp is disabled, hits still drop difficulty.
		cfg.Difficulty.UpPerSec = 0
		cfg.Difficulty.UpMovingBonus = 0
	}
}
