package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Account is one upstream account whose metrics are folded into the cards.
type Account struct {
	Index int    `validate:"min=1"`
	User  string `validate:"required"`
	Token string
}

type Config struct {
	HTTPAddr     string    `validate:"required"`
	Accounts     []Account `validate:"dive"`
	CacheSeconds int       `validate:"min=0"`
	FetchTimeout time.Duration
	LogLevel     string `validate:"oneof=debug info warn error"`
}

// Load reads configuration from the environment, after loading envFiles
// (or .env when none are given) if they exist.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	cfg := &Config{
		HTTPAddr:     getEnvWithDefault("HTTP_ADDR", ":8080"),
		Accounts:     loadAccounts(),
		CacheSeconds: getEnvAsInt("CACHE_SECONDS", 0),
		FetchTimeout: getEnvAsDuration("FETCH_TIMEOUT", 10*time.Second),
		LogLevel:     getEnvWithDefault("LOG_LEVEL", "info"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// loadAccounts reads PAT_1_USER/PAT_1, PAT_2_USER/PAT_2, ... and stops at
// the first index without a user.
func loadAccounts() []Account {
	var accounts []Account
	for i := 1; ; i++ {
		user := os.Getenv(fmt.Sprintf("PAT_%d_USER", i))
		if user == "" {
			return accounts
		}
		accounts = append(accounts, Account{
			Index: i,
			User:  user,
			Token: os.Getenv(fmt.Sprintf("PAT_%d", i)),
		})
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return duration
}
