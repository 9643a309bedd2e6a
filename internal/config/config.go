package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/postpilot/composer/internal/accounts"
	"github.com/postpilot/composer/internal/rules"
)

const SchemaVersion = 1

// PublishAPI holds the connection settings for the external publishing API.
// The token itself lives in the OS keychain; only its ref is stored here.
type PublishAPI struct {
	BaseURL  string `yaml:"base_url,omitempty"`
	TokenRef string `yaml:"token_ref,omitempty"`
}

// AISettings configures the optional content generator.
type AISettings struct {
	Model     string `yaml:"model,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
	APIKeyRef string `yaml:"api_key_ref,omitempty"`
}

// Config is the on-disk configuration: the connected account directory plus
// collaborator endpoints.
type Config struct {
	SchemaVersion int                `yaml:"schema_version"`
	DefaultBrand  string             `yaml:"default_brand,omitempty"`
	PublishAPI    PublishAPI         `yaml:"publish_api,omitempty"`
	AI            AISettings         `yaml:"ai,omitempty"`
	Accounts      []accounts.Account `yaml:"accounts,omitempty"`
}

func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home directory: %w", err)
	}
	return filepath.Join(home, ".composer", "config.yaml"), nil
}

func New() *Config {
	return &Config{SchemaVersion: SchemaVersion}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: config file does not exist at %s", os.ErrNotExist, path)
		}
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	cfg := &Config{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadOrCreate(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg = New()
	if err := Save(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory for %s: %w", path, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := tmpFile.Chmod(0o600); err != nil {
		tmpFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("replace config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported config schema_version=%d (expected %d)", c.SchemaVersion, SchemaVersion)
	}
	for i, account := range c.Accounts {
		if _, err := rules.ParsePlatform(string(account.Platform)); err != nil {
			return fmt.Errorf("accounts[%d]: %w", i, err)
		}
		if strings.TrimSpace(account.AccountID) == "" {
			return fmt.Errorf("accounts[%d]: account_id is required", i)
		}
		if strings.TrimSpace(account.BrandID) == "" {
			return fmt.Errorf("accounts[%d]: brand_id is required", i)
		}
	}
	if c.PublishAPI.TokenRef != "" {
		if _, err := ParseSecretRef(c.PublishAPI.TokenRef); err != nil {
			return fmt.Errorf("publish_api.token_ref: %w", err)
		}
	}
	if c.AI.APIKeyRef != "" {
		if _, err := ParseSecretRef(c.AI.APIKeyRef); err != nil {
			return fmt.Errorf("ai.api_key_ref: %w", err)
		}
	}
	return nil
}

// Directory builds the read-only account directory from the configured
// accounts.
func (c *Config) Directory() (*accounts.Directory, error) {
	return accounts.NewDirectory(c.Accounts)
}
