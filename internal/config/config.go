package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabaseDSN   string `env:"DATABASE_URI"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`
	JWTUserSecret string `env:"JWT_USER_SECRET"`

	// Лента банковских транзакций для сверки депозитов.
	BankFeedAddress string        `env:"BANK_FEED_ADDRESS"`
	BankFeedToken   string        `env:"BANK_FEED_TOKEN"`
	BankFeedTimeout time.Duration `env:"BANK_FEED_TIMEOUT"`

	// Kafka для событий заказов; пустой KafkaBrokers отключает публикацию.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC"`
}

func LoadConfig() (*Config, error) {
	// .env опционален, его отсутствие не ошибка.
	_ = godotenv.Load()

	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	loadFlags(&flagsConfig)

	conf := mergeConfig(&envConfig, &flagsConfig)
	if conf.DatabaseDSN == "" {
		return nil, errors.New("database DSN is not set")
	}
	if conf.JWTUserSecret == "" {
		return nil, errors.New("JWT secret is not set")
	}
	return conf, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func loadFlags(flagConfig *Config) {
	flag.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	flag.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	flag.StringVar(&flagConfig.MigrationsDir, "m", "internal/db/migrations", "Database migrations directory")
	flag.StringVar(&flagConfig.BankFeedAddress, "b", "", "Bank transaction feed base URL")
	flag.StringVar(&flagConfig.KafkaTopic, "t", "floramart.orders", "Kafka topic for order events")

	flag.Parse()
}

func mergeConfig(envConfig, flagsConfig *Config) *Config {
	conf := &Config{
		RunAddress:      defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress),
		DatabaseDSN:     defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN),
		MigrationsDir:   defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir),
		JWTUserSecret:   envConfig.JWTUserSecret,
		BankFeedAddress: defaultIfBlank(envConfig.BankFeedAddress, flagsConfig.BankFeedAddress),
		BankFeedToken:   envConfig.BankFeedToken,
		BankFeedTimeout: envConfig.BankFeedTimeout,
		KafkaBrokers:    envConfig.KafkaBrokers,
		KafkaTopic:      defaultIfBlank(envConfig.KafkaTopic, flagsConfig.KafkaTopic),
	}
	return conf
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
