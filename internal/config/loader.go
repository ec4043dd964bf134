package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"spotivol/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/spotivol"
	configFileName = "config.yaml"
)

func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads config.yaml from the given directory on top of the defaults.
// A missing file is not an error. The state directory defaults to configPath.
func LoadConfig(configPath string) (SpotivolConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			config.StateDir = configPath
			return config, nil
		}
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return SpotivolConfig{}, err
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return SpotivolConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}

	if config.StateDir == "" {
		config.StateDir = configPath
	}

	if err := Validate(config); err != nil {
		return SpotivolConfig{}, fmt.Errorf("invalid config %s: %w", configFilePath, err)
	}

	logging.Debug("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}

// SaveConfig writes the configuration to config.yaml in the given directory.
func SaveConfig(configPath string, config SpotivolConfig) error {
	if err := Validate(config); err != nil {
		return err
	}

	if err := os.MkdirAll(configPath, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// The state directory is derived from the config path unless set explicitly.
	out := config
	if out.StateDir == configPath {
		out.StateDir = ""
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configFilePath := filepath.Join(configPath, configFileName)
	tmpPath := configFilePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmpPath, configFilePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace config: %w", err)
	}

	logging.Info("ConfigLoader", "Saved configuration to %s", configFilePath)
	return nil
}
