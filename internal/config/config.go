// Package config loads service configuration from the environment, an
// optional .env style file, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port      string `mapstructure:"PORT"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`

	MySQL MySQL `mapstructure:",squash"`
	Redis Redis `mapstructure:",squash"`

	EventBroker      string `mapstructure:"EVENT_BROKER"`
	RabbitMQURL      string `mapstructure:"RABBITMQ_URL"`
	RabbitMQExchange string `mapstructure:"RABBITMQ_EXCHANGE"`
	KafkaBrokers     string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic       string `mapstructure:"KAFKA_TOPIC"`

	NonceSecret   string        `mapstructure:"NONCE_SECRET"`
	NonceLifetime time.Duration `mapstructure:"NONCE_LIFETIME"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`

	BrowsePageSize     int           `mapstructure:"BROWSE_PAGE_SIZE"`
	BrowseCacheTTL     time.Duration `mapstructure:"BROWSE_CACHE_TTL"`
	ProductCacheTTL    time.Duration `mapstructure:"PRODUCT_CACHE_TTL"`
	UnpaidOrderTimeout time.Duration `mapstructure:"UNPAID_ORDER_TIMEOUT"`
}

type MySQL struct {
	User     string `mapstructure:"MYSQL_USER"`
	Password string `mapstructure:"MYSQL_PASSWORD"`
	Host     string `mapstructure:"MYSQL_HOST"`
	Port     string `mapstructure:"MYSQL_PORT"`
	Database string `mapstructure:"MYSQL_DATABASE"`
}

func (m MySQL) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		m.User, m.Password, m.Host, m.Port, m.Database)
}

type Redis struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

func (r Redis) Addr() string {
	return r.Host + ":" + r.Port
}

const (
	BrokerRabbitMQ = "rabbitmq"
	BrokerKafka    = "kafka"
	BrokerNone     = "none"
)

var defaults = map[string]any{
	"PORT":                 "8080",
	"LOG_LEVEL":            "info",
	"LOG_PRETTY":           false,
	"MYSQL_USER":           "",
	"MYSQL_PASSWORD":       "",
	"MYSQL_HOST":           "127.0.0.1",
	"MYSQL_PORT":           "3306",
	"MYSQL_DATABASE":       "dealer_portal",
	"REDIS_HOST":           "127.0.0.1",
	"REDIS_PORT":           "6379",
	"REDIS_PASSWORD":       "",
	"REDIS_DB":             0,
	"EVENT_BROKER":         BrokerRabbitMQ,
	"RABBITMQ_URL":         "",
	"RABBITMQ_EXCHANGE":    "order.exchange",
	"KAFKA_BROKERS":        "",
	"KAFKA_TOPIC":          "order.created",
	"NONCE_SECRET":         "",
	"NONCE_LIFETIME":       "24h",
	"SESSION_TTL":          "48h",
	"BROWSE_PAGE_SIZE":     50,
	"BROWSE_CACHE_TTL":     "30s",
	"PRODUCT_CACHE_TTL":    "1m",
	"UNPAID_ORDER_TIMEOUT": "60m",
}

// Load reads configuration. When path is non-empty that file is read first
// and environment variables override it.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.EventBroker = strings.ToLower(strings.TrimSpace(cfg.EventBroker))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.NonceSecret == "" {
		errs = append(errs, errors.New("NONCE_SECRET is required"))
	}
	if c.MySQL.User == "" || c.MySQL.Database == "" {
		errs = append(errs, errors.New("MYSQL_USER and MYSQL_DATABASE are required"))
	}
	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.BrowsePageSize <= 0 {
		errs = append(errs, errors.New("BROWSE_PAGE_SIZE must be positive"))
	}
	switch c.EventBroker {
	case BrokerRabbitMQ:
		if c.RabbitMQURL == "" {
			errs = append(errs, errors.New("RABBITMQ_URL is required for the rabbitmq broker"))
		}
	case BrokerKafka:
		if c.KafkaBrokers == "" {
			errs = append(errs, errors.New("KAFKA_BROKERS is required for the kafka broker"))
		}
	case BrokerNone:
	default:
		errs = append(errs, fmt.Errorf("unknown EVENT_BROKER %q", c.EventBroker))
	}
	return errors.Join(errs...)
}

// KafkaBrokerList splits the comma separated broker list.
func (c *Config) KafkaBrokerList() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
