package config

import (
	"fmt"
	"time"

	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/retry"
)

type Config struct {
	LogLevel           string         `env:"LOG_LEVEL"`
	Workers            int            `env:"WORKERS"`
	SendTimeoutSeconds int            `env:"SEND_TIMEOUT_SECONDS"`
	PushgatewayURL     string         `env:"PUSHGATEWAY_URL"`
	Database           PostgresConfig `env-prefix:"POSTGRES_"`
	SMTP               SMTPConfig     `env-prefix:"SMTP_"`
	Twilio             TwilioConfig   `env-prefix:"TWILIO_"`
	RabbitMQ           RabbitMQConfig `env-prefix:"RABBITMQ_"`
	Redis              RedisConfig    `env-prefix:"REDIS_"`
	PostgresRetry      RetryConfig    `env-prefix:"RETRY_POSTGRES_"`
	RabbitMQRetry      RetryConfig    `env-prefix:"RETRY_RABBITMQ_"`
	StoreRetry         RetryConfig    `env-prefix:"RETRY_STORE_"`
}

func NewConfig(envFilePath string, configFilePath string) (*Config, error) {
	myConfig := &Config{}

	cfg := config.New()

	if envFilePath != "" {
		if err := cfg.LoadEnvFiles(envFilePath); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}
	cfg.EnableEnv("")

	if configFilePath != "" {
		if err := cfg.LoadConfigFiles(configFilePath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	myConfig.LogLevel = cfg.GetString("MIS_VIGENCIAS_LOG_LEVEL")
	myConfig.Workers = cfg.GetInt("MIS_VIGENCIAS_WORKERS")
	myConfig.SendTimeoutSeconds = cfg.GetInt("MIS_VIGENCIAS_SEND_TIMEOUT_SECONDS")
	myConfig.PushgatewayURL = cfg.GetString("MIS_VIGENCIAS_PUSHGATEWAY_URL")

	// Postgres
	myConfig.Database.DSN = cfg.GetString("MIS_VIGENCIAS_POSTGRES_DSN")
	myConfig.Database.MaxOpenConnections = cfg.GetInt("MIS_VIGENCIAS_POSTGRES_MAX_OPEN_CONNECTIONS")
	myConfig.Database.MaxIdleConnections = cfg.GetInt("MIS_VIGENCIAS_POSTGRES_MAX_IDLE_CONNECTIONS")
	myConfig.Database.ConnectionMaxLifetimeSeconds = cfg.GetInt("MIS_VIGENCIAS_POSTGRES_CONNECTION_MAX_LIFETIME_SECONDS")

	// SMTP
	myConfig.SMTP.Host = cfg.GetString("MIS_VIGENCIAS_SMTP_HOST")
	myConfig.SMTP.Port = cfg.GetInt("MIS_VIGENCIAS_SMTP_PORT")
	myConfig.SMTP.User = cfg.GetString("MIS_VIGENCIAS_SMTP_USER")
	myConfig.SMTP.Password = cfg.GetString("MIS_VIGENCIAS_SMTP_PASSWORD")
	myConfig.SMTP.From = cfg.GetString("MIS_VIGENCIAS_SMTP_FROM")

	// Twilio / WhatsApp
	myConfig.Twilio.AccountSID = cfg.GetString("MIS_VIGENCIAS_TWILIO_ACCOUNT_SID")
	myConfig.Twilio.AuthToken = cfg.GetString("MIS_VIGENCIAS_TWILIO_AUTH_TOKEN")
	myConfig.Twilio.FromNumber = cfg.GetString("MIS_VIGENCIAS_TWILIO_FROM_NUMBER")
	myConfig.Twilio.Mode = cfg.GetString("MIS_VIGENCIAS_TWILIO_MODE")

	// RabbitMQ (push queue)
	myConfig.RabbitMQ.User = cfg.GetString("MIS_VIGENCIAS_RABBITMQ_USER")
	myConfig.RabbitMQ.Password = cfg.GetString("MIS_VIGENCIAS_RABBITMQ_PASSWORD")
	myConfig.RabbitMQ.Host = cfg.GetString("MIS_VIGENCIAS_RABBITMQ_HOST")
	myConfig.RabbitMQ.Port = cfg.GetInt("MIS_VIGENCIAS_RABBITMQ_PORT")
	myConfig.RabbitMQ.VHost = cfg.GetString("MIS_VIGENCIAS_RABBITMQ_VHOST")
	myConfig.RabbitMQ.Exchange = cfg.GetString("MIS_VIGENCIAS_RABBITMQ_EXCHANGE")
	myConfig.RabbitMQ.Queue = cfg.GetString("MIS_VIGENCIAS_RABBITMQ_QUEUE")

	// Redis (run guard)
	myConfig.Redis.Addr = cfg.GetString("MIS_VIGENCIAS_REDIS_ADDR")
	myConfig.Redis.Password = cfg.GetString("MIS_VIGENCIAS_REDIS_PASSWORD")
	myConfig.Redis.DB = cfg.GetInt("MIS_VIGENCIAS_REDIS_DB")

	// Retry
	myConfig.PostgresRetry.Attempts = cfg.GetInt("MIS_VIGENCIAS_RETRY_POSTGRES_ATTEMPTS")
	myConfig.PostgresRetry.DelayMilliseconds = cfg.GetInt("MIS_VIGENCIAS_RETRY_POSTGRES_DELAY_MS")
	myConfig.PostgresRetry.Backoff = cfg.GetFloat64("MIS_VIGENCIAS_RETRY_POSTGRES_BACKOFF")

	myConfig.RabbitMQRetry.Attempts = cfg.GetInt("MIS_VIGENCIAS_RETRY_RABBITMQ_ATTEMPTS")
	myConfig.RabbitMQRetry.DelayMilliseconds = cfg.GetInt("MIS_VIGENCIAS_RETRY_RABBITMQ_DELAY_MS")
	myConfig.RabbitMQRetry.Backoff = cfg.GetFloat64("MIS_VIGENCIAS_RETRY_RABBITMQ_BACKOFF")

	myConfig.StoreRetry.Attempts = cfg.GetInt("MIS_VIGENCIAS_RETRY_STORE_ATTEMPTS")
	myConfig.StoreRetry.DelayMilliseconds = cfg.GetInt("MIS_VIGENCIAS_RETRY_STORE_DELAY_MS")
	myConfig.StoreRetry.Backoff = cfg.GetFloat64("MIS_VIGENCIAS_RETRY_STORE_BACKOFF")

	if myConfig.LogLevel == "" {
		myConfig.LogLevel = "info"
	}
	if myConfig.Workers <= 0 {
		myConfig.Workers = 1
	}
	if myConfig.SendTimeoutSeconds <= 0 {
		myConfig.SendTimeoutSeconds = 30
	}
	if myConfig.Twilio.Mode == "" {
		myConfig.Twilio.Mode = "simulate"
	}

	return myConfig, nil
}

func MakeStrategy(c RetryConfig) retry.Strategy {
	attempts := c.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	return retry.Strategy{
		Attempts: attempts,
		Delay:    time.Duration(c.DelayMilliseconds) * time.Millisecond,
		Backoff:  c.Backoff,
	}
}
