package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "snackadmin"
	ConfigFileName = "config.yaml"

	DefaultAPIURL   = "http://localhost:5000/api"
	DefaultProfile  = "local"
	DefaultPageSize = 10

	StorageKeyring = "keyring"
	StorageFile    = "file"
)

// Environment variables understood by the CLI
const (
	EnvAPIURL    = "SNACKADMIN_API_URL"
	EnvProfile   = "SNACKADMIN_PROFILE"
	EnvStorage   = "SNACKADMIN_STORAGE"
	EnvLogLevel  = "SNACKADMIN_LOG_LEVEL"
	EnvConfigDir = "SNACKADMIN_CONFIG_DIR"
	EnvEmail     = "SNACKADMIN_EMAIL"
	EnvPassword  = "SNACKADMIN_PASSWORD"
)

var ErrProfileNotFound = errors.New("profile not found")

// Profile is a named API environment (local dev API, staging, production)
type Profile struct {
	Name   string `yaml:"name"`
	APIURL string `yaml:"api_url"`
}

// FileConfig is the user's configuration stored in ~/.config/snackadmin/config.yaml
type FileConfig struct {
	SelectedProfile string    `yaml:"selected_profile,omitempty"`
	Storage         string    `yaml:"storage,omitempty"`
	PageSize        int       `yaml:"page_size,omitempty"`
	Profiles        []Profile `yaml:"profiles,omitempty"`
}

// Overrides carries values given on the command line. Empty fields are ignored.
type Overrides struct {
	APIURL   string
	Profile  string
	LogLevel string
}

// Config is the resolved configuration used by the CLI
type Config struct {
	APIURL    string
	Profile   string
	Storage   string
	ConfigDir string
	PageSize  int

	LogLevel  string
	LogFormat string

	// Credentials for non-interactive login (CI)
	Email    string
	Password string
}

// GetConfigDir returns the directory holding the config file and file-backed sessions
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", configDirName), nil
}

// GetConfigPath returns the path to the user config file
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// LoadFile reads the user configuration file. A missing file yields an empty config.
func LoadFile() (*FileConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return &FileConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	return &cfg, nil
}

// SaveFile writes the user configuration file
func SaveFile(cfg *FileConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetProfile returns a profile by name
func (c *FileConfig) GetProfile(name string) (*Profile, error) {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
}

// SetSelectedProfile updates the selected profile and saves the config
func SetSelectedProfile(name string) error {
	cfg, err := LoadFile()
	if err != nil {
		return err
	}

	if _, err := cfg.GetProfile(name); err != nil {
		return err
	}

	cfg.SelectedProfile = name
	return SaveFile(cfg)
}

// Load resolves the configuration. Precedence: overrides, environment (including .env files),
// config file, defaults.
func Load(o Overrides) (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	dir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}

	file, err := LoadFile()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ConfigDir: dir,
		Profile:   firstNonEmpty(o.Profile, os.Getenv(EnvProfile), file.SelectedProfile, DefaultProfile),
		Storage:   strings.ToLower(firstNonEmpty(os.Getenv(EnvStorage), file.Storage, StorageKeyring)),
		PageSize:  file.PageSize,
		LogLevel:  firstNonEmpty(o.LogLevel, os.Getenv(EnvLogLevel), "warn"),
		LogFormat: "console",
		Email:     os.Getenv(EnvEmail),
		Password:  os.Getenv(EnvPassword),
	}

	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}

	if cfg.Storage != StorageKeyring && cfg.Storage != StorageFile {
		return nil, fmt.Errorf("invalid storage %q, must be one of: %s, %s", cfg.Storage, StorageKeyring, StorageFile)
	}

	var profileURL string
	if profile, err := file.GetProfile(cfg.Profile); err == nil {
		profileURL = profile.APIURL
	} else if cfg.Profile != DefaultProfile {
		return nil, err
	}

	cfg.APIURL = strings.TrimRight(firstNonEmpty(o.APIURL, os.Getenv(EnvAPIURL), profileURL, DefaultAPIURL), "/")

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
