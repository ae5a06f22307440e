package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ConfigFile string
	DBPath     string
	Username   string
	Password   string
	Token      string
	TokenFile  string
	Output     string
	Verbose    bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ConfigFile: os.Getenv("CLUB_CONFIG"),
		Username:   os.Getenv("CLUB_USER"),
		Password:   os.Getenv("CLUB_PASS"),
		Token:      os.Getenv("CLUB_TOKEN"),
		TokenFile:  getEnvOrDefault("CLUB_TOKEN_FILE", defaultTokenFile()),
		Output:     getEnvOrDefault("CLUB_OUTPUT", "text"),
		Verbose:    false,
	}
}

// HasPassword reports whether username/password credentials were given
func (c *Config) HasPassword() bool {
	return c.Username != "" && c.Password != ""
}

// LoadToken loads the token from file if not already set
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No token file is fine
		}
		return err
	}

	c.Token = strings.TrimSpace(string(data))
	return nil
}

// SaveToken saves the token to the token file
func (c *Config) SaveToken(token string) error {
	c.Token = token

	dir := filepath.Dir(c.TokenFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.TokenFile, []byte(token), 0600)
}

// ClearToken removes the saved token
func (c *Config) ClearToken() error {
	c.Token = ""
	err := os.Remove(c.TokenFile)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".clubdesk/token"
	}
	return filepath.Join(home, ".clubdesk", "token")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
