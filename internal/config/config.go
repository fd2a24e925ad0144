package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	JWTSecret         string
	SendgridAPIKey    string
	SendgridFromName  string
	SendgridFromEmail string
	StreamKeepAlive   time.Duration
	HeartbeatRateMax  int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EDUPULSE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "EduPulse Engage API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("stream.keepalive", "30s")
	v.SetDefault("heartbeat.rate_max", 30)
	v.SetDefault("sendgrid.from_name", "EduPulse")

	keepAliveString := v.GetString("stream.keepalive")
	if keepAliveString == "" {
		keepAliveString = "30s"
	}

	keepAlive, err := time.ParseDuration(keepAliveString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid stream keepalive: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		JWTSecret:         v.GetString("jwt.secret"),
		SendgridAPIKey:    v.GetString("sendgrid.api_key"),
		SendgridFromName:  v.GetString("sendgrid.from_name"),
		SendgridFromEmail: v.GetString("sendgrid.from_email"),
		StreamKeepAlive:   keepAlive,
		HeartbeatRateMax:  v.GetInt("heartbeat.rate_max"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.HeartbeatRateMax <= 0 {
		cfg.HeartbeatRateMax = 30
	}

	return cfg, nil
}
