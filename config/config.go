package config

import (
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion           string `mapstructure:"GENERAL_VERSION"`
	Environment              string `mapstructure:"ENVIRONMENT"                  validate:"omitempty,oneof=development test production"`
	ServerPort               int    `mapstructure:"SERVER_PORT"                  validate:"gt=0,lte=65535"`
	DatabaseHost             string `mapstructure:"DB_HOST"                      validate:"required"`
	DatabasePort             int    `mapstructure:"DB_PORT"                      validate:"gt=0,lte=65535"`
	DatabaseName             string `mapstructure:"DB_NAME"                      validate:"required"`
	DatabaseUser             string `mapstructure:"DB_USER"                      validate:"required"`
	DatabasePassword         string `mapstructure:"DB_PASSWORD"`
	DatabaseCacheAddress     string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort        int    `mapstructure:"DB_CACHE_PORT"                validate:"gte=0,lte=65535"`
	CorsAllowOrigins         string `mapstructure:"CORS_ALLOW_ORIGINS"`
	SchedulerEnabled         bool   `mapstructure:"SCHEDULER_ENABLED"`
	LotteryMaxPasses         int    `mapstructure:"LOTTERY_MAX_PASSES"           validate:"gte=0"`
	CostIndexCacheTTLMinutes int    `mapstructure:"COST_INDEX_CACHE_TTL_MINUTES" validate:"gte=0"`
}

var ConfigInstance Config

var envVars = []string{
	"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT",
	"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
	"DB_CACHE_ADDRESS", "DB_CACHE_PORT",
	"CORS_ALLOW_ORIGINS",
	"SCHEDULER_ENABLED", "LOTTERY_MAX_PASSES", "COST_INDEX_CACHE_TTL_MINUTES",
}

func New() (Config, error) {
	log := logger.New("config").Function("New")
	log.Info("Initializing config")

	viper.AutomaticEnv()
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("SCHEDULER_ENABLED", true)
	viper.SetDefault("COST_INDEX_CACHE_TTL_MINUTES", 60)

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

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

	if err := validateConfig(config); err != nil {
		return Config{}, log.Err("Fatal error: invalid config", err)
	}

	ConfigInstance = config
	log.Info(
		"Successfully initialized config",
		"environment", config.Environment,
		"serverPort", config.ServerPort,
		"schedulerEnabled", config.SchedulerEnabled,
	)
	return ConfigInstance, nil
}

func GetConfig() Config {
	return ConfigInstance
}

// CostIndexCacheTTL is zero when caching of the cost index series is disabled.
func (c Config) CostIndexCacheTTL() time.Duration {
	return time.Duration(c.CostIndexCacheTTLMinutes) * time.Minute
}

func (c Config) CacheEnabled() bool {
	return c.DatabaseCacheAddress != "" && c.DatabaseCachePort > 0
}

func validateConfig(config Config) error {
	return validator.New().Struct(config)
}
