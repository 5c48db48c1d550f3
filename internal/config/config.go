package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/DamnnnMat/InvoiceChaser/internal/email"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Mail     email.SMTPConfig
	Cron     CronConfig
	Redis    RedisConfig
	App      AppConfig
	JWT      JWTConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// CronConfig holds the shared secret the external scheduler presents as a
// bearer token when triggering a dispatch run.
type CronConfig struct {
	Secret string `mapstructure:"secret"`
}

// RedisConfig is optional; when Addr is empty the dispatch run lock is a
// no-op and the service runs single-instance.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AppConfig carries values rendered into outgoing mail.
type AppConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Secrets never live in the yaml file.
	if v := viper.GetString("SMTP_PASSWORD"); v != "" {
		config.Mail.Password = v
	}
	if v := viper.GetString("CRON_SECRET"); v != "" {
		config.Cron.Secret = v
	}
	if v := viper.GetString("JWT_SECRET"); v != "" {
		config.JWT.Secret = v
	}
	if v := viper.GetString("DB_PASSWORD"); v != "" {
		config.Database.Password = v
	}

	return &config, nil
}
