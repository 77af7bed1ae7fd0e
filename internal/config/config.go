package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Env  string
	Port string

	// RedisAddr empty means run on the in-memory store (local dev).
	RedisAddr string
	RedisPass string
	RedisDB   int

	JWTSecret string

	// BotToken identifies the chat transport account. The legacy env
	// names are still honored so old deployments keep working.
	BotToken string
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:       getEnv("ENV", "development"),
		Port:      getEnv("PORT", "8080"),
		RedisAddr: getEnv("REDIS_ADDR", ""),
		RedisPass: getEnv("REDIS_PASSWORD", ""),
		JWTSecret: getEnv("JWT_SECRET", ""),
	}

	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %v", err)
	}
	cfg.RedisDB = db

	for _, name := range []string{"BOT_TOKEN", "TELEGRAM_TOKEN", "AUTO_BACBO_TOKEN"} {
		if v := os.Getenv(name); v != "" {
			cfg.BotToken = v
			break
		}
	}

	if cfg.Env == "production" && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
