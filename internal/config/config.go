package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	// StoreDriver selects the catalog/order backend: "postgres" (default) or "memory".
	StoreDriver string

	RedisAddr     string
	RedisPassword string
	CartTTL       time.Duration

	AMQPURL   string
	SecretKey string
	// InternalKey lets trusted services bypass the public rate tiers.
	InternalKey string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:        os.Getenv("DB_HOST"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBPort:        os.Getenv("DB_PORT"),
		AppPort:       getEnv("APP_PORT", "8080"),
		AppEnv:        os.Getenv("APP_ENV"),
		StoreDriver:   getEnv("STORE_DRIVER", StoreDriverPostgres),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CartTTL:       getDuration("CART_TTL", 7*24*time.Hour),
		AMQPURL:       os.Getenv("AMQP_URL"),
		SecretKey:     os.Getenv("SECRET_KEY"),
		InternalKey:   os.Getenv("INTERNAL_SECRET_KEY"),
	}

	if cfg.StoreDriver == StoreDriverPostgres && cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
