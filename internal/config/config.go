package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the full application configuration loaded from file/env.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Confluence ConfluenceConfig `mapstructure:"confluence"`
}

// ServerConfig holds server-specific options.
type ServerConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// ConfluenceConfig describes the target Confluence Data Center instance and
// its credentials. The API token is a personal access token sent as a bearer
// token; login/password drives basic auth and the admin session used by
// directory synchronization.
type ConfluenceConfig struct {
	URL           string `mapstructure:"url"`
	Login         string `mapstructure:"login"`
	APIToken      string `mapstructure:"api_token"`
	LoginPassword string `mapstructure:"login_password"`
	DirectoryID   string `mapstructure:"directory_id"`
}

// envBindings maps config keys to their canonical environment variables.
var envBindings = map[string]string{
	"confluence.url":            "CONFLUENCE_URL",
	"confluence.login":          "CONFLUENCE_LOGIN",
	"confluence.api_token":      "CONFLUENCE_API_TOKEN",
	"confluence.login_password": "CONFLUENCE_LOGIN_PASSWORD",
	"confluence.directory_id":   "CONFLUENCE_DIRECTORY_ID",
	"server.log_level":          "CONFLUENCE_MCP_LOG_LEVEL",
}

// Load reads configuration from the provided directory or file and from
// environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if path != "" {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			v.AddConfigPath(path)
		} else {
			v.SetConfigFile(path)
		}
	} else {
		v.AddConfigPath(".")
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", env, err)
		}
	}

	v.SetDefault("server.log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.applyNetrcDefaults(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	c.Confluence.URL = strings.TrimRight(strings.TrimSpace(c.Confluence.URL), "/")

	if c.Confluence.URL == "" {
		return fmt.Errorf("config: confluence.url is required (set CONFLUENCE_URL)")
	}

	if err := c.Confluence.validateCredentials(); err != nil {
		return err
	}

	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	return nil
}

func (c ConfluenceConfig) validateCredentials() error {
	if c.APIToken == "" && (c.Login == "" || c.LoginPassword == "") {
		return fmt.Errorf("config: confluence requires either api_token or login/login_password")
	}
	return nil
}

// SyncCredentials resolves the admin login, password, and directory id used by
// the directory sync tool, preferring the explicit overrides.
func (c ConfluenceConfig) SyncCredentials(login, password, directoryID string) (string, string, string) {
	if login == "" {
		login = c.Login
	}
	if password == "" {
		password = c.LoginPassword
	}
	if directoryID == "" {
		directoryID = c.DirectoryID
	}
	return login, password, directoryID
}
