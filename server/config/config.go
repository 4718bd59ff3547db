package config

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mock_config github.com/ericzzh/mattermost-autodelete/server/config Service

const (
	DefaultListenAddress = ":8080"
	DefaultDriver        = "sqlite"
	DefaultDataSource    = "./database/database.sqlite"
	DefaultQueueSize     = 32
	DefaultLogLevel      = "info"

	envPrefix = "AUTODELETE_"
)

var (
	ErrMissingServerURL = errors.New("missing server url")
	ErrMissingTeamID    = errors.New("missing team id")
	ErrMissingToken     = errors.New("missing access token")
	ErrMissingCmdToken  = errors.New("missing slash command token")
	ErrUnknownDriver    = errors.New("unknown database driver")
)

// Database selects the persistent store backing the channel limits.
type Database struct {
	Driver     string `yaml:"driver"`
	DataSource string `yaml:"data_source"`
}

// Configuration captures the bot's settings.
//
// TeamID is the scope the bot works in: commands and posts from other teams are ignored.
// Token is the bot account's personal access token, CommandToken the verification token
// Mattermost sends along with every slash command request.
type Configuration struct {
	ServerURL     string   `yaml:"server_url"`
	TeamID        string   `yaml:"team_id"`
	Token         string   `yaml:"token"`
	CommandToken  string   `yaml:"command_token"`
	ListenAddress string   `yaml:"listen_address"`
	Database      Database `yaml:"database"`
	QueueSize     int      `yaml:"queue_size"`
	LogLevel      string   `yaml:"log_level"`
}

// Service is the read side of the configuration.
type Service interface {
	GetConfiguration() *Configuration
}

// ServiceImpl holds the loaded configuration.
type ServiceImpl struct {
	configurationLock sync.RWMutex
	configuration     *Configuration
}

// NewConfigService wraps an already loaded configuration.
func NewConfigService(c *Configuration) *ServiceImpl {
	return &ServiceImpl{configuration: c}
}

// GetConfiguration retrieves the active configuration under lock.
//
// The returned value is a copy, so callers may not mutate the service's configuration.
func (c *ServiceImpl) GetConfiguration() *Configuration {
	c.configurationLock.RLock()
	defer c.configurationLock.RUnlock()

	if c.configuration == nil {
		return &Configuration{}
	}
	cfg := *c.configuration
	return &cfg
}

// UpdateConfiguration applies f to the stored configuration.
func (c *ServiceImpl) UpdateConfiguration(f func(*Configuration)) {
	c.configurationLock.Lock()
	defer c.configurationLock.Unlock()

	if c.configuration == nil {
		c.configuration = &Configuration{}
	}
	f(c.configuration)
}

// Load reads the configuration file at path (optional when empty), overlays the
// AUTODELETE_* environment variables and fills defaults. The result is not validated.
func Load(path string) (*Configuration, error) {
	c := &Configuration{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
		if err := yaml.UnmarshalStrict(data, c); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %s", path)
		}
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	c.SetDefaults()

	return c, nil
}

// LoadDotenv loads a .env file into the environment. Variables already set win.
func LoadDotenv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "failed to load %s", path)
	}
	return nil
}

func (c *Configuration) applyEnv() error {
	strs := map[string]*string{
		"SERVER_URL":    &c.ServerURL,
		"TEAM_ID":       &c.TeamID,
		"TOKEN":         &c.Token,
		"COMMAND_TOKEN": &c.CommandToken,
		"LISTEN":        &c.ListenAddress,
		"DB_DRIVER":     &c.Database.Driver,
		"DB_DSN":        &c.Database.DataSource,
		"LOG_LEVEL":     &c.LogLevel,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := os.LookupEnv(envPrefix + "QUEUE_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "invalid %sQUEUE_SIZE", envPrefix)
		}
		c.QueueSize = n
	}
	return nil
}

// SetDefaults fills every unset optional field.
func (c *Configuration) SetDefaults() {
	if c.ListenAddress == "" {
		c.ListenAddress = DefaultListenAddress
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DefaultDriver
	}
	if c.Database.DataSource == "" && c.Database.Driver == DefaultDriver {
		c.Database.DataSource = DefaultDataSource
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")
}

// IsValid reports the first missing required setting.
func (c *Configuration) IsValid() error {
	if c.ServerURL == "" {
		return ErrMissingServerURL
	}
	if c.TeamID == "" {
		return ErrMissingTeamID
	}
	if c.Token == "" {
		return ErrMissingToken
	}
	if c.CommandToken == "" {
		return ErrMissingCmdToken
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return errors.Wrapf(ErrUnknownDriver, "driver %q", c.Database.Driver)
	}
	return nil
}
