// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Провайдеры отправки писем.
const (
	EmailProviderHTTP = "http"
	EmailProviderSES  = "ses"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	Application             `yaml:"application"`
	HTTPServer              `yaml:"http_server"`
	EmailClient             `yaml:"email_client"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	RateLimit               `yaml:"rate_limit"`
}

// Application структура для настроек самого приложения
type Application struct {
	// BaseURL используется для построения ссылок подтверждения.
	BaseURL string `yaml:"base_url" env:"APP_BASE_URL" env-required:"true"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"15s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// EmailClient структура для настройки отправки писем
type EmailClient struct {
	Provider           string        `yaml:"provider" env:"EMAIL_PROVIDER" env-default:"http"`
	BaseURL            string        `yaml:"base_url" env:"EMAIL_BASE_URL"`
	SenderEmail        string        `yaml:"sender_email" env:"EMAIL_SENDER" env-required:"true"`
	AuthorizationToken string        `yaml:"authorization_token" env:"EMAIL_AUTHORIZATION_TOKEN"`
	Timeout            time.Duration `yaml:"timeout" env-default:"10s"`
	SESRegion          string        `yaml:"ses_region" env:"SES_REGION" env-default:"us-east-1"`
	SESAccessKey       string        `yaml:"ses_access_key" env:"SES_ACCESS_KEY"`
	SESSecretKey       string        `yaml:"ses_secret_key" env:"SES_SECRET_KEY"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес отключает кеш.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"2s"`
	ConfirmedTTL time.Duration `yaml:"confirmed_ttl" env-default:"24h"`
}

// RabbitMQ структура для настройки публикации событий.
// Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange   string        `yaml:"exchange" env-default:"subscriptions"`
	Retries    int           `yaml:"retries" env-default:"3"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// RateLimit структура для ограничения частоты заявок на подписку
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"5"`
	Burst int     `yaml:"burst" env-default:"10"`
}

// Load читает конфиг из файла и переменных окружения.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file: %s - does not exist", configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	switch cfg.EmailClient.Provider {
	case EmailProviderHTTP:
		if cfg.EmailClient.BaseURL == "" {
			return nil, fmt.Errorf("email_client.base_url is required for provider %q", cfg.EmailClient.Provider)
		}
	case EmailProviderSES:
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.EmailClient.Provider)
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH, завершает процесс при ошибке
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Application:\n"+
			"  BaseURL: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"EmailClient:\n"+
			"  Provider: %s\n"+
			"  BaseURL: %s\n"+
			"  Sender: %s\n"+
			"  Timeout: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"RabbitMQ:\n"+
			"  Enabled: %t\n"+
			"  Exchange: %s\n"+
			"RateLimit:\n"+
			"  RPS: %g\n"+
			"  Burst: %d\n",
		c.Env,
		c.Application.BaseURL,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.EmailClient.Provider,
		c.EmailClient.BaseURL,
		c.SenderEmail,
		c.EmailClient.Timeout,
		c.AddressRedis,
		c.DB,
		c.RabbitMQ.URL != "",
		c.Exchange,
		c.RPS,
		c.Burst,
	)
}
