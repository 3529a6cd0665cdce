package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

const (
	envAPIKey = "NOVANOTE_API_KEY"
	envAPIURL = "NOVANOTE_API_URL"

	defaultAPIURL = "http://localhost:8080"
)

var apiKeyPattern = regexp.MustCompile(`^nn_[0-9a-fA-F]{64}$`)

// GlobalConfig is the credentials file kept in the user config directory.
type GlobalConfig struct {
	APIKey            string `json:"api_key"`
	APIURL            string `json:"api_url"`
	DefaultCollection string `json:"default_collection,omitempty"`
}

var (
	getConfigDirFunc  = defaultGetConfigDir
	getConfigPathFunc = defaultGetConfigPath
)

func defaultGetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "novanote"), nil
}

func defaultGetConfigPath() (string, error) {
	configDir, err := getConfigDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetConfigPath returns the full path to config.json
func GetConfigPath() (string, error) {
	return getConfigPathFunc()
}

// LoadGlobalConfig returns a nil config and no error when the file is absent.
func LoadGlobalConfig() (*GlobalConfig, error) {
	configPath, err := getConfigPathFunc()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config GlobalConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &config, nil
}

// SaveGlobalConfig writes config.json with 0600 permissions.
func SaveGlobalConfig(config *GlobalConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	configDir, err := getConfigDirFunc()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath, err := getConfigPathFunc()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DeleteGlobalConfig removes config.json. A missing file is not an error.
func DeleteGlobalConfig() error {
	configPath, err := getConfigPathFunc()
	if err != nil {
		return err
	}
	if err := os.Remove(configPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// IsValidAPIKey checks the nn_ + 64 hex chars format.
func IsValidAPIKey(key string) bool {
	return apiKeyPattern.MatchString(key)
}

// CredentialSource names where the active credentials came from.
type CredentialSource string

const (
	SourceFlag         CredentialSource = "flag"
	SourceEnv          CredentialSource = "env"
	SourceGlobalConfig CredentialSource = "global_config"
	SourceNone         CredentialSource = "none"
)

// Credentials are the resolved API key and base URL.
type Credentials struct {
	APIKey string
	APIURL string
	Source CredentialSource
}

// ResolveCredentials picks the API key from flag, then environment, then
// config.json. The URL follows the same order and falls back to the
// local default.
func ResolveCredentials(flagAPIKey, flagAPIURL string) (Credentials, error) {
	creds := Credentials{APIKey: flagAPIKey, APIURL: flagAPIURL, Source: SourceFlag}

	if creds.APIKey == "" {
		creds.APIKey = os.Getenv(envAPIKey)
		creds.Source = SourceEnv
	}
	if creds.APIURL == "" {
		creds.APIURL = os.Getenv(envAPIURL)
	}

	if creds.APIKey == "" || creds.APIURL == "" {
		global, err := LoadGlobalConfig()
		if err != nil {
			return Credentials{}, err
		}
		if global != nil {
			if creds.APIKey == "" && global.APIKey != "" {
				creds.APIKey = global.APIKey
				creds.Source = SourceGlobalConfig
			}
			if creds.APIURL == "" {
				creds.APIURL = global.APIURL
			}
		}
	}

	if creds.APIKey == "" {
		creds.Source = SourceNone
	}
	if creds.APIURL == "" {
		creds.APIURL = defaultAPIURL
	}
	return creds, nil
}
