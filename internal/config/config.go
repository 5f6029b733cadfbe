package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Alpaca      AlpacaConfig     `mapstructure:"alpaca"`
	Fred        FredConfig       `mapstructure:"fred"`
	MarketData  MarketDataConfig `mapstructure:"market_data"`
	Backtest    BacktestConfig   `mapstructure:"backtest"`
	Security    SecurityConfig   `mapstructure:"security"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
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

type AlpacaConfig struct {
	APIKey    string `mapstructure:"api_key" json:"-" yaml:"-"`
	APISecret string `mapstructure:"api_secret" json:"-" yaml:"-"`
	DataURL   string `mapstructure:"data_url"`
	Feed      string `mapstructure:"feed"`
}

type FredConfig struct {
	APIKey  string `mapstructure:"api_key" json:"-" yaml:"-"`
	BaseURL string `mapstructure:"base_url"`
}

type MarketDataConfig struct {
	CacheTTL string `mapstructure:"cache_ttl"`
}

type BacktestConfig struct {
	PeriodsPerYear int `mapstructure:"periods_per_year"`
}

type SecurityConfig struct {
	JWTSecret  string `mapstructure:"jwt_secret" json:"-" yaml:"-"`
	JWTExpiry  string `mapstructure:"jwt_expiry"`
	BcryptCost int    `mapstructure:"bcrypt_cost"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Bind secrets passed purely through the environment
	if err := viper.BindEnv("security.jwt_secret", "JWT_SECRET"); err != nil {
		return nil, fmt.Errorf("failed to bind JWT_SECRET environment variable: %w", err)
	}
	if err := viper.BindEnv("alpaca.api_key", "ALPACA_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind ALPACA_API_KEY environment variable: %w", err)
	}
	if err := viper.BindEnv("alpaca.api_secret", "ALPACA_API_SECRET"); err != nil {
		return nil, fmt.Errorf("failed to bind ALPACA_API_SECRET environment variable: %w", err)
	}
	if err := viper.BindEnv("fred.api_key", "FRED_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind FRED_API_KEY environment variable: %w", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	environment := strings.ToLower(config.Environment)

	if environment != "development" && config.Security.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required in non-development environments")
	}

	if config.Security.JWTExpiry != "" {
		if _, err := time.ParseDuration(config.Security.JWTExpiry); err != nil {
			return nil, fmt.Errorf("invalid JWT expiry duration: %w", err)
		}
	}

	if config.Security.BcryptCost < bcrypt.MinCost || config.Security.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, config.Security.BcryptCost)
	}

	if config.MarketData.CacheTTL != "" {
		if _, err := time.ParseDuration(config.MarketData.CacheTTL); err != nil {
			return nil, fmt.Errorf("invalid market data cache TTL: %w", err)
		}
	}

	if config.Backtest.PeriodsPerYear < 1 {
		return nil, fmt.Errorf("backtest periods_per_year must be positive, got %d", config.Backtest.PeriodsPerYear)
	}

	config.Environment = environment

	return &config, nil
}

// CacheTTL returns the parsed market-data cache TTL.
func (c *Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.MarketData.CacheTTL)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// JWTExpiry returns the parsed token lifetime.
func (c *Config) JWTExpiry() time.Duration {
	d, err := time.ParseDuration(c.Security.JWTExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "quantdesk")
	viper.SetDefault("database.sslmode", "disable")

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Alpaca
	viper.SetDefault("alpaca.api_key", "")
	viper.SetDefault("alpaca.api_secret", "")
	viper.SetDefault("alpaca.data_url", "")
	viper.SetDefault("alpaca.feed", "iex")

	// FRED
	viper.SetDefault("fred.api_key", "")
	viper.SetDefault("fred.base_url", "https://api.stlouisfed.org/fred")

	// Market data
	viper.SetDefault("market_data.cache_ttl", "15m")

	// Backtest
	viper.SetDefault("backtest.periods_per_year", 252)

	// Security
	viper.SetDefault("security.jwt_secret", "")
	viper.SetDefault("security.jwt_expiry", "24h")
	viper.SetDefault("security.bcrypt_cost", 12)
}
