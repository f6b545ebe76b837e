package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/vanmoi/vanmoi/internal/api/http"
	"github.com/vanmoi/vanmoi/internal/db"
)

type Config struct {
	Log      LogConfig
	Http     http.Config
	Database db.Config
	Auth     AuthConfig
	Records  RecordsConfig
}

type AuthConfig struct {
	SessionTTLHours   int    `mapstructure:"session_ttl_hours"`
	BootstrapUsername string `mapstructure:"bootstrap_username"`
	BootstrapPassword string `mapstructure:"bootstrap_password"`
}

type RecordsConfig struct {
	RetentionDays int32 `mapstructure:"retention_days"`
}

var config Config

func InitConfig() {
	_ = godotenv.Load()

	viper.SetConfigName("application")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./cmd/vanmoi-server")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("log.level", "INFO")
	viper.SetDefault("http.port", 8080)
	viper.SetDefault("http.cors_origins", []string{"*"})
	viper.SetDefault("database.schema", "public")
	viper.SetDefault("auth.session_ttl_hours", 24*7)
	viper.SetDefault("auth.bootstrap_username", "admin")
	viper.SetDefault("auth.bootstrap_password", "admin")
	viper.SetDefault("records.retention_days", 30)

	_ = viper.BindEnv("database.url", "DATABASE_URL")
	_ = viper.BindEnv("database.schema", "DATABASE_SCHEMA")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic(err)
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		panic(err)
	}

	initLogger(config.Log.Level)

	// Pretty print config as JSON (only at DEBUG level)
	if strings.ToUpper(config.Log.Level) == LOG_LEVEL_DEBUG {
		configJSON, err := json.MarshalIndent(config, "", "  ")
		if err == nil {
			fmt.Println("Config loaded:")
			fmt.Println(string(configJSON))
		}
	}
}
