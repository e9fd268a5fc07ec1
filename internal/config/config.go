package config

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`

	CustomerEventsStream string `env:"CUSTOMER_EVENTS_STREAM" envDefault:"customer.events"`
	AccountEventsStream  string `env:"ACCOUNT_EVENTS_STREAM" envDefault:"account.events"`
	EventConsumerGroup   string `env:"EVENT_CONSUMER_GROUP" envDefault:"account-service"`
	EventConsumerName    string `env:"EVENT_CONSUMER_NAME" envDefault:"account-service-1"`

	TxMaxAttempts int `env:"TX_MAX_ATTEMPTS" envDefault:"4"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}
