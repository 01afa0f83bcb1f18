package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Config struct {
	Server struct {
		Host            string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
		Port            int           `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
		AllowedOrigins  []string      `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS" env-default:"*"`
	} `yaml:"server"`

	Database struct {
		Driver         string        `yaml:"driver" env:"DB_DRIVER" env-default:"mysql"`
		Host           string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
		Port           int           `yaml:"port" env:"DB_PORT" env-default:"3306"`
		User           string        `yaml:"user" env:"DB_USER" env-default:"root"`
		Password       string        `yaml:"password" env:"DB_PASSWORD"`
		Name           string        `yaml:"name" env:"DB_NAME" env-default:"LOGIN"`
		SQLitePath     string        `yaml:"sqlite_path" env:"DB_SQLITE_PATH"`
		Table          string        `yaml:"table" env:"DB_TABLE" env-default:"Registration"`
		ConnectTimeout time.Duration `yaml:"connect_timeout" env:"DB_CONNECT_TIMEOUT" env-default:"5s"`
		MaxIdleConns   int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"0"`
		CreateTable    bool          `yaml:"create_table" env:"DB_CREATE_TABLE" env-default:"false"`
	} `yaml:"database"`

	Security struct {
		// Passwords are stored exactly as submitted unless this is switched on.
		HashPasswords bool `yaml:"hash_passwords" env:"HASH_PASSWORDS" env-default:"false"`
		BcryptCost    int  `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
	} `yaml:"security"`

	Log struct {
		Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
		Pretty bool   `yaml:"pretty" env:"LOG_PRETTY" env-default:"false"`
	} `yaml:"log"`
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Load reads the YAML file at path, then applies environment overrides.
// With an empty path only the environment is consulted.
func Load(path string) (*Config, error) {
	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read config from environment: %w", err)
		}
	} else {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverMySQL:
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			errs = append(errs, errors.New("database.sqlite_path is required for the sqlite3 driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.Database.Driver))
	}
	if !tableNamePattern.MatchString(c.Database.Table) {
		errs = append(errs, fmt.Errorf("invalid table name %q", c.Database.Table))
	}
	if c.Database.MaxIdleConns < 0 {
		errs = append(errs, errors.New("database.max_idle_conns must not be negative"))
	}
	if c.Security.HashPasswords &&
		(c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost) {
		errs = append(errs, fmt.Errorf("security.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Log.Level))
	}
	return errors.Join(errs...)
}

// MustLoad resolves the config path from CONFIG_PATH or -config and exits on any error.
func MustLoad() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("Could not load .env file")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configflag := flag.String("config", "", "Path to configuration file")
		flag.Parse()
		configPath = *configflag
	}
	if configPath == "" {
		log.Info().Msg("No config file given, reading configuration from environment")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	return cfg
}
