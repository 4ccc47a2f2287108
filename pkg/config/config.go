package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	MongoDB MongoDBConfig `mapstructure:"mongodb"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Pricing PricingConfig `mapstructure:"pricing"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type MongoDBConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	PoolSize int           `mapstructure:"pool_size"`
	CartTTL  time.Duration `mapstructure:"cart_ttl"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type PricingConfig struct {
	StandardFee      float64 `mapstructure:"standard_fee"`
	ExpressFee       float64 `mapstructure:"express_fee"`
	OvernightFee     float64 `mapstructure:"overnight_fee"`
	FreeShippingOver float64 `mapstructure:"free_shipping_over"`
	TaxRate          float64 `mapstructure:"tax_rate"`
}

type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Encoding    string   `mapstructure:"encoding"`
	OutputPaths []string `mapstructure:"output_paths"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("redis.cart_ttl", 720*time.Hour)
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("pricing.standard_fee", 9.99)
	v.SetDefault("pricing.express_fee", 19.99)
	v.SetDefault("pricing.overnight_fee", 39.99)
	v.SetDefault("pricing.free_shipping_over", 50)
	v.SetDefault("pricing.tax_rate", 0.08)

	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
