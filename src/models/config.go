package models

// MConfig Structure
type MConfig struct {
	Name          string               `yaml:"name"`
	Host          string               `yaml:"host"`
	Port          int                  `yaml:"port"`
	LogLevel      string               `yaml:"log_level"`
	GrpcHost      string               `yaml:"grpc_host"`
	GrpcPort      int                  `yaml:"grpc_port"`
	Storage       MStorageConfig       `yaml:"storage"`
	Network       MNetworkConfig       `yaml:"network"`
	QuoteProvider MQuoteProviderConfig `yaml:"quote_provider"`
	Seeder        MSeederConfig        `yaml:"seeder"`
	Reader        MReaderConfig        `yaml:"reader"`
	Brokers       MBrokersConfig       `yaml:"brokers"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	Schema             string `yaml:"schema"` // postgres only
}

type MNetworkConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout"`
	UserAgent      string   `yaml:"user_agent"`
}

type MQuoteProviderConfig struct {
	BaseURL      string `yaml:"base_url"`
	HistoryRange string `yaml:"history_range"` // e.g. "5y"
	Interval     string `yaml:"interval"`      // e.g. "1d"
}

type MSeederConfig struct {
	Universe       []string `yaml:"universe"`
	BatchSize      int      `yaml:"batch_size"`
	MaxBatchSize   int      `yaml:"max_batch_size"`
	RequestDelayMs int      `yaml:"request_delay_ms"` // negative disables the pause
	SweepEnabled   bool     `yaml:"sweep_enabled"`
	SweepCron      string   `yaml:"sweep_cron"`
	CalendarSymbol string   `yaml:"calendar_symbol"` // picks the market whose holidays skip the sweep
}

type MReaderConfig struct {
	MaxRows int `yaml:"max_rows"`
}

type MBrokersConfig struct {
	ExchangeSuffixes map[string]string     `yaml:"exchange_suffixes"`
	DefaultSuffix    string                `yaml:"default_suffix"`
	AuthCode         MAuthCodeBrokerConfig `yaml:"authcode"`
	Checksum         MChecksumBrokerConfig `yaml:"checksum"`
}

type MAuthCodeBrokerConfig struct {
	Enabled      bool   `yaml:"enabled"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
	TokenURL     string `yaml:"token_url"`
	HoldingsURL  string `yaml:"holdings_url"`
}

type MChecksumBrokerConfig struct {
	Enabled     bool   `yaml:"enabled"`
	APIKey      string `yaml:"api_key"`
	APISecret   string `yaml:"api_secret"`
	LoginURL    string `yaml:"login_url"`
	TokenURL    string `yaml:"token_url"`
	HoldingsURL string `yaml:"holdings_url"`
}
