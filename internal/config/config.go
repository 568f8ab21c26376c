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
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	LeaderboardCacheTTL time.Duration
	LeaderboardLimit    int
	SeedEnabled         bool
	SeedToken           string
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
	v.SetEnvPrefix("WILLOW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Willow API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("leaderboard.cache_ttl", "1m")
	v.SetDefault("leaderboard.limit", 10)
	v.SetDefault("seed.enabled", false)

	ttlString := v.GetString("leaderboard.cache_ttl")
	if ttlString == "" {
		ttlString = "1m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid leaderboard cache ttl: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		LeaderboardCacheTTL: ttl,
		LeaderboardLimit:    v.GetInt("leaderboard.limit"),
		SeedEnabled:         v.GetBool("seed.enabled"),
		SeedToken:           v.GetString("seed.token"),
	}

	if cfg.LeaderboardLimit <= 0 {
		cfg.LeaderboardLimit = 10
	}

	return cfg, nil
}
