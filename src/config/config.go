package config

import (
	"fmt"
	"os"
	"strconv"

	"market-cache/src/models"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig

	// file holds the values read from YAML before environment overrides,
	// so Save never writes secrets that only came from the environment.
	file       models.MConfig
	overridden map[string]bool
}

// envOverride binds one environment variable to one config field.
type envOverride struct {
	name    string
	apply   func(c *models.MConfig, v string) error
	restore func(dst, src *models.MConfig)
}

var envOverrides = []envOverride{
	{
		name:    "MARKET_CACHE_DB_DSN",
		apply:   func(c *models.MConfig, v string) error { c.Storage.DBConnectionString = v; return nil },
		restore: func(d, s *models.MConfig) { d.Storage.DBConnectionString = s.Storage.DBConnectionString },
	},
	{
		name:    "AUTHCODE_CLIENT_ID",
		apply:   func(c *models.MConfig, v string) error { c.Brokers.AuthCode.ClientID = v; return nil },
		restore: func(d, s *models.MConfig) { d.Brokers.AuthCode.ClientID = s.Brokers.AuthCode.ClientID },
	},
	{
		name:    "AUTHCODE_CLIENT_SECRET",
		apply:   func(c *models.MConfig, v string) error { c.Brokers.AuthCode.ClientSecret = v; return nil },
		restore: func(d, s *models.MConfig) { d.Brokers.AuthCode.ClientSecret = s.Brokers.AuthCode.ClientSecret },
	},
	{
		name:    "AUTHCODE_REDIRECT_URI",
		apply:   func(c *models.MConfig, v string) error { c.Brokers.AuthCode.RedirectURI = v; return nil },
		restore: func(d, s *models.MConfig) { d.Brokers.AuthCode.RedirectURI = s.Brokers.AuthCode.RedirectURI },
	},
	{
		name:    "CHECKSUM_API_KEY",
		apply:   func(c *models.MConfig, v string) error { c.Brokers.Checksum.APIKey = v; return nil },
		restore: func(d, s *models.MConfig) { d.Brokers.Checksum.APIKey = s.Brokers.Checksum.APIKey },
	},
	{
		name:    "CHECKSUM_API_SECRET",
		apply:   func(c *models.MConfig, v string) error { c.Brokers.Checksum.APISecret = v; return nil },
		restore: func(d, s *models.MConfig) { d.Brokers.Checksum.APISecret = s.Brokers.Checksum.APISecret },
	},
	{
		name: "SEED_REQUEST_DELAY_MS",
		apply: func(c *models.MConfig, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			c.Seeder.RequestDelayMs = n
			return nil
		},
		restore: func(d, s *models.MConfig) { d.Seeder.RequestDelayMs = s.Seeder.RequestDelayMs },
	},
	{
		name: "PORT",
		apply: func(c *models.MConfig, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			c.Port = n
			return nil
		},
		restore: func(d, s *models.MConfig) { d.Port = s.Port },
	},
}

// -----------------------------------------------------------------------------

// NewConfig loads the YAML file, applies environment overrides and defaults,
// then validates.
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig, file: modelConfig, overridden: map[string]bool{}}

	// 3. Environment, then defaults
	if err := config.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	config.ApplyDefaults()

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for _, o := range envOverrides {
		v, ok := lookup(o.name)
		if !ok || v == "" {
			continue
		}
		if err := o.apply(c.MConfig, v); err != nil {
			return fmt.Errorf("invalid %s: %w", o.name, err)
		}
		c.overridden[o.name] = true
	}
	return nil
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills every unset knob with its documented default.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "market-cache"
	}
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.GrpcHost == "" {
		c.GrpcHost = "127.0.0.1"
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		c.Storage.DBPath = "market_cache.db"
	}
	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 30
	}
	if c.QuoteProvider.HistoryRange == "" {
		c.QuoteProvider.HistoryRange = "5y"
	}
	if c.QuoteProvider.Interval == "" {
		c.QuoteProvider.Interval = "1d"
	}
	if c.Seeder.BatchSize == 0 {
		c.Seeder.BatchSize = 10
	}
	if c.Seeder.MaxBatchSize == 0 {
		c.Seeder.MaxBatchSize = 100
	}
	if c.Seeder.RequestDelayMs == 0 {
		c.Seeder.RequestDelayMs = 200
	}
	if c.Seeder.SweepCron == "" {
		c.Seeder.SweepCron = "30 18 * * 1-5"
	}
	if c.Reader.MaxRows == 0 {
		c.Reader.MaxRows = 100000
	}
	if len(c.Brokers.ExchangeSuffixes) == 0 {
		c.Brokers.ExchangeSuffixes = map[string]string{"NSE": ".NS", "BSE": ".BO"}
	}
	if c.Brokers.DefaultSuffix == "" {
		c.Brokers.DefaultSuffix = ".NS"
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535 || c.GrpcPort == c.Port) {
		return fmt.Errorf("invalid grpc port number: %d", c.GrpcPort)
	}

	// Storage
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("db_connection_string (or MARKET_CACHE_DB_DSN) is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %q", c.Storage.DBType)
	}

	// Network
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}

	// Seeder
	if len(c.Seeder.Universe) == 0 {
		return fmt.Errorf("seeder universe must list at least one symbol or table reference")
	}
	for i, s := range c.Seeder.Universe {
		if s == "" {
			return fmt.Errorf("universe entry %d cannot be empty", i)
		}
	}
	if c.Seeder.BatchSize <= 0 || c.Seeder.MaxBatchSize <= 0 {
		return fmt.Errorf("batch sizes must be greater than 0")
	}
	if c.Seeder.BatchSize > c.Seeder.MaxBatchSize {
		return fmt.Errorf("batch_size %d exceeds max_batch_size %d", c.Seeder.BatchSize, c.Seeder.MaxBatchSize)
	}
	if c.Seeder.SweepEnabled {
		if _, err := cron.ParseStandard(c.Seeder.SweepCron); err != nil {
			return fmt.Errorf("invalid sweep_cron %q: %w", c.Seeder.SweepCron, err)
		}
	}

	// Reader
	if c.Reader.MaxRows <= 0 {
		return fmt.Errorf("reader max_rows must be greater than 0")
	}

	// Brokers
	if a := c.Brokers.AuthCode; a.Enabled && (a.ClientID == "" || a.ClientSecret == "" || a.RedirectURI == "") {
		return fmt.Errorf("authcode broker enabled without client_id, client_secret and redirect_uri")
	}
	if k := c.Brokers.Checksum; k.Enabled && (k.APIKey == "" || k.APISecret == "") {
		return fmt.Errorf("checksum broker enabled without api_key and api_secret")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path.
// Fields that came from the environment are written with their file values.
func (c *Config) Save(configPath string) error {
	out := *c.MConfig
	for _, o := range envOverrides {
		if c.overridden[o.name] {
			o.restore(&out, &c.file)
		}
	}

	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0600: the file may hold broker secrets)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
