package config

import (
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion        string `mapstructure:"GENERAL_VERSION"`
	Environment           string `mapstructure:"ENVIRONMENT"`
	ServerPort            int    `mapstructure:"SERVER_PORT"`
	DatabaseHost          string `mapstructure:"DB_HOST"`
	DatabasePort          int    `mapstructure:"DB_PORT"`
	DatabaseName          string `mapstructure:"DB_NAME"`
	DatabaseUser          string `mapstructure:"DB_USER"`
	DatabasePassword      string `mapstructure:"DB_PASSWORD"`
	DatabaseCacheAddress  string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort     int    `mapstructure:"DB_CACHE_PORT"`
	DatabaseCacheReset    int    `mapstructure:"DB_CACHE_RESET"`
	CorsAllowOrigins      string `mapstructure:"CORS_ALLOW_ORIGINS"`
	SchedulerEnabled      bool   `mapstructure:"SCHEDULER_ENABLED"`
	ShiftTxTimeoutSeconds int    `mapstructure:"SHIFT_TX_TIMEOUT_SECONDS"`
	PendencyQueueSize     int    `mapstructure:"PENDENCY_QUEUE_SIZE"`
}

var ConfigInstance Config

func InitConfig() (Config, error) {
	log := logger.New("config").Function("InitConfig")
	log.Info("Initializing config")

	viper.AutomaticEnv()

	envVars := []string{
		"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"DB_CACHE_ADDRESS", "DB_CACHE_PORT", "DB_CACHE_RESET",
		"CORS_ALLOW_ORIGINS",
		"SCHEDULER_ENABLED", "SHIFT_TX_TIMEOUT_SECONDS", "PENDENCY_QUEUE_SIZE",
	}

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	viper.SetDefault("SHIFT_TX_TIMEOUT_SECONDS", 15)
	viper.SetDefault("PENDENCY_QUEUE_SIZE", 256)
	viper.SetDefault("DB_CACHE_RESET", -1)

	envVarsSet := viper.IsSet("SERVER_PORT") && viper.IsSet("DB_HOST")

	if envVarsSet {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}

	ConfigInstance = config
	log.Info("Successfully initialized config")
	return ConfigInstance, nil
}

func GetConfig() Config {
	return ConfigInstance
}

// ShiftTxTimeout returns the transaction budget for the shift open
// coordinator as a duration.
func (c Config) ShiftTxTimeout() time.Duration {
	return time.Duration(c.ShiftTxTimeoutSeconds) * time.Second
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error(
			"Fatal error: invalid server port",
			"port", config.ServerPort,
		)
	}

	if config.ShiftTxTimeoutSeconds <= 0 {
		return log.Error(
			"Fatal error: invalid shift transaction timeout",
			"seconds", config.ShiftTxTimeoutSeconds,
		)
	}

	if config.PendencyQueueSize <= 0 {
		return log.Error(
			"Fatal error: invalid pendency queue size",
			"size", config.PendencyQueueSize,
		)
	}

	return nil
}
