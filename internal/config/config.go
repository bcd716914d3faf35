package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/fx"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Assinafy  AssinafyConfig  `mapstructure:"assinafy"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Signature SignatureConfig `mapstructure:"signature"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Port    int    `mapstructure:"port"`
	Env     string `mapstructure:"env"`
	BaseURL string `mapstructure:"base_url"`
}

// AssinafyConfig holds the provider credentials and API root. Every outbound
// call carries the bearer token and the account id header.
type AssinafyConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	AccountID string        `mapstructure:"account_id"`
	APIToken  string        `mapstructure:"api_token"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type StorageConfig struct {
	BasePath        string `mapstructure:"base_path"`        // Root for all document storage
	ContractsFolder string `mapstructure:"contracts_folder"` // Rendered, unsigned contracts
	SignedFolder    string `mapstructure:"signed_folder"`    // Certificated contracts
}

// SignatureConfig bounds the document readiness wait loop.
type SignatureConfig struct {
	WaitMaxAttempts int           `mapstructure:"wait_max_attempts"`
	WaitInterval    time.Duration `mapstructure:"wait_interval"`
}

type SchedulerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

type WebhookConfig struct {
	// Secret enables HMAC-SHA256 verification of inbound webhook bodies.
	// Empty disables verification.
	Secret string `mapstructure:"secret"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func NewConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Enable environment variable override
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()

	return &cfg, nil
}

// ApplyDefaults fills unset fields and converts scalar durations from
// seconds/minutes to time.Duration.
func (c *Config) ApplyDefaults() {
	if c.Assinafy.Timeout == 0 {
		c.Assinafy.Timeout = 30
	}
	c.Assinafy.Timeout = c.Assinafy.Timeout * time.Second
	c.Assinafy.BaseURL = strings.TrimRight(c.Assinafy.BaseURL, "/")

	if c.Storage.ContractsFolder == "" {
		c.Storage.ContractsFolder = "contratos"
	}
	if c.Storage.SignedFolder == "" {
		c.Storage.SignedFolder = "contratos_assinados"
	}

	if c.Signature.WaitMaxAttempts == 0 {
		c.Signature.WaitMaxAttempts = 10
	}
	if c.Signature.WaitInterval == 0 {
		c.Signature.WaitInterval = 3
	}
	c.Signature.WaitInterval = c.Signature.WaitInterval * time.Second

	if c.Scheduler.Interval == 0 {
		c.Scheduler.Interval = 5
	}
	c.Scheduler.Interval = c.Scheduler.Interval * time.Minute
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)
