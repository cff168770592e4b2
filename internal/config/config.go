package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port               string
	DBConnectionString string
	GitHubToken        string
	GitHubAPIURL       string
	SyncSecret         string
	SyncInterval       time.Duration
	RedisAddr          string
	RedisPassword      string
}

func Load() (*Config, error) {
	port := getEnv("PORT", "8080")
	dbConnStr := getEnv("DB_CONNECTION_STRING", "")
	githubToken := getEnv("GITHUB_TOKEN", "")
	githubAPIURL := getEnv("GITHUB_API_URL", "https://api.github.com")
	syncSecret := getEnv("SYNC_SECRET", "")
	redisAddr := getEnv("REDIS_ADDR", "")
	redisPassword := getEnv("REDIS_PASSWORD", "")

	syncInterval, err := strconv.Atoi(getEnv("SYNC_INTERVAL_HOURS", "6"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:               port,
		DBConnectionString: dbConnStr,
		GitHubToken:        githubToken,
		GitHubAPIURL:       githubAPIURL,
		SyncSecret:         syncSecret,
		SyncInterval:       time.Duration(syncInterval) * time.Hour,
		RedisAddr:          redisAddr,
		RedisPassword:      redisPassword,
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
