package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// MongoDB configuration.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Stripe configuration.
	StripeKey string `mapstructure:"STRIPE_KEY"`

	// Slot and booking configuration.
	SlotDurationMinutes     int     `mapstructure:"SLOT_DURATION_MINUTES"`
	SlotLockTTLSeconds      int     `mapstructure:"SLOT_LOCK_TTL_SECONDS"`
	SlotCacheTTLSeconds     int     `mapstructure:"SLOT_CACHE_TTL_SECONDS"`
	PlatformFeeRate         float64 `mapstructure:"PLATFORM_FEE_RATE"`
	CancellationWindowHours int     `mapstructure:"CANCELLATION_WINDOW_HOURS"`
	CancellationFeeRate     float64 `mapstructure:"CANCELLATION_FEE_RATE"`

	// Payout configuration.
	EscrowDays          int     `mapstructure:"ESCROW_DAYS"`
	PayoutBatchSize     int     `mapstructure:"PAYOUT_BATCH_SIZE"`
	PayoutMaxRetries    int     `mapstructure:"PAYOUT_MAX_RETRIES"`
	TransferRatePerSec  float64 `mapstructure:"TRANSFER_RATE_PER_SEC"`
	TransferTimeoutSecs int     `mapstructure:"TRANSFER_TIMEOUT_SECONDS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "bookify")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_LOCK_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("SLOT_DURATION_MINUTES", 15)
	viper.SetDefault("SLOT_LOCK_TTL_SECONDS", 300)
	viper.SetDefault("SLOT_CACHE_TTL_SECONDS", 120)
	viper.SetDefault("PLATFORM_FEE_RATE", 0.15)
	viper.SetDefault("CANCELLATION_WINDOW_HOURS", 24)
	viper.SetDefault("CANCELLATION_FEE_RATE", 0.25)
	viper.SetDefault("ESCROW_DAYS", 7)
	viper.SetDefault("PAYOUT_BATCH_SIZE", 50)
	viper.SetDefault("PAYOUT_MAX_RETRIES", 3)
	viper.SetDefault("TRANSFER_RATE_PER_SEC", 5.0)
	viper.SetDefault("TRANSFER_TIMEOUT_SECONDS", 30)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
