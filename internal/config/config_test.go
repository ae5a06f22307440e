package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
	dir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func (s *ConfigSuite) write(name, content string) string {
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

// options points at files in the temp dir so the working directory is never read
func (s *ConfigSuite) options() Options {
	return Options{EnvFile: filepath.Join(s.dir, "missing.env")}
}

func (s *ConfigSuite) TestDefaults() {
	cfg, err := Load(s.options())
	s.Require().NoError(err)

	s.Equal(StorageSQLite, cfg.Storage)
	s.Equal("clubdesk.db", cfg.DBPath)
	s.Equal(5*time.Second, cfg.BusyTimeout)
	s.Equal(12*time.Hour, cfg.TokenTTL)
	s.Equal("warn", cfg.LogLevel)
	s.Equal("json", cfg.LogFormat)
	s.False(cfg.SeedDemo)
	s.Empty(cfg.TokenSecret)
}

func (s *ConfigSuite) TestConfigFileOverridesDefaults() {
	opts := s.options()
	opts.ConfigFile = s.write("club.yaml", `
storage: memory
seed_demo: true
token_ttl: 30m
bcrypt_cost: 11
`)

	cfg, err := Load(opts)
	s.Require().NoError(err)
	s.Equal(StorageMemory, cfg.Storage)
	s.True(cfg.SeedDemo)
	s.Equal(30*time.Minute, cfg.TokenTTL)
	s.Equal(11, cfg.BcryptCost)
}

func (s *ConfigSuite) TestEnvironmentOverridesConfigFile() {
	opts := s.options()
	opts.ConfigFile = s.write("club.yaml", "db_path: from-file.db\n")
	s.T().Setenv("CLUB_DB_PATH", "from-env.db")

	cfg, err := Load(opts)
	s.Require().NoError(err)
	s.Equal("from-env.db", cfg.DBPath)
}

func (s *ConfigSuite) TestEnvFileIsLoaded() {
	opts := s.options()
	opts.EnvFile = s.write("test.env", "CLUB_TOKEN_SECRET=from-dotenv\n")
	s.T().Cleanup(func() { _ = os.Unsetenv("CLUB_TOKEN_SECRET") })

	cfg, err := Load(opts)
	s.Require().NoError(err)
	s.Equal("from-dotenv", cfg.TokenSecret)
}

func (s *ConfigSuite) TestMissingExplicitConfigFileFails() {
	opts := s.options()
	opts.ConfigFile = filepath.Join(s.dir, "nope.yaml")

	_, err := Load(opts)
	s.Error(err)
}

func (s *ConfigSuite) TestInvalidStorageFails() {
	s.T().Setenv("CLUB_STORAGE", "postgres")
	_, err := Load(s.options())
	s.ErrorContains(err, "storage")
}

func (s *ConfigSuite) TestInvalidLogLevelFails() {
	s.T().Setenv("CLUB_LOG_LEVEL", "loud")
	_, err := Load(s.options())
	s.ErrorContains(err, "log_level")
}

func (s *ConfigSuite) TestNewLoggerHonoursFormatAndLevel() {
	cfg := &Config{LogLevel: "info", LogFormat: "json"}
	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)

	logger.Debug("hidden")
	logger.Info("shown")

	s.NotContains(buf.String(), "hidden")
	s.Contains(buf.String(), `"msg":"shown"`)
}
