package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Redis      RedisConfig
	Commission CommissionConfig
	Webhook    WebhookConfig
}

type AppConfig struct {
	Name         string
	Version      string
	Environment  string
	RepInviteKey string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type CommissionConfig struct {
	ClawbackWindowDays  int
	PlanCacheTTLSeconds int
}

type WebhookConfig struct {
	RefundVerificationToken string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	clawbackWindowDays, err := strconv.Atoi(getEnv("COMMISSION_CLAWBACK_WINDOW_DAYS", "30"))
	if err != nil || clawbackWindowDays < 0 {
		return nil, errors.New("invalid commission clawback window")
	}

	planCacheTTL, err := strconv.Atoi(getEnv("COMMISSION_PLAN_CACHE_TTL_SECONDS", "300"))
	if err != nil || planCacheTTL < 0 {
		return nil, errors.New("invalid plan cache ttl")
	}

	cfg := &Config{
		App: AppConfig{
			Name:         getEnv("APP_NAME", "Clinic Commission API"),
			Version:      getEnv("APP_VERSION", "1.0.0"),
			Environment:  getEnv("APP_ENV", "development"),
			RepInviteKey: getEnv("APP_REP_INVITE_KEY", ""),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "clinic_commission"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Commission: CommissionConfig{
			ClawbackWindowDays:  clawbackWindowDays,
			PlanCacheTTLSeconds: planCacheTTL,
		},
		Webhook: WebhookConfig{
			RefundVerificationToken: getEnv("REFUND_WEBHOOK_VERIFICATION_TOKEN", ""),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.App.RepInviteKey == "" {
		return nil, errors.New("missing rep invite key")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if cfg.Webhook.RefundVerificationToken == "" {
		return nil, errors.New("missing refund webhook verification token")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}
