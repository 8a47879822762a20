package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds runtime settings for the Friends Manager server.
type Config struct {
	Port               string
	MongoURI           string
	MongoDB            string
	StorageBackend     string // "mongo" or "memory"
	DBTimeout          time.Duration
	JWTSecret          string
	TokenExpiry        time.Duration
	LogLevel           string
	FriendRequestRate  string // "<n>/<second|minute|hour|day>"
	SearchPageSize     int
	SearchMaxPageSize  int
	CORSAllowedOrigins []string
	SeedUsersFile      string // optional JSON array of users loaded at startup
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables, falling back to defaults.
func FromEnv() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:            getEnv("MONGO_DB", "friends_manager"),
		StorageBackend:     strings.ToLower(getEnv("STORAGE_BACKEND", "mongo")),
		DBTimeout:          getDuration("DB_TIMEOUT", 10*time.Second),
		JWTSecret:          getEnv("JWT_SECRET", "friends-manager-secret"),
		TokenExpiry:        getDuration("TOKEN_EXPIRY", 24*time.Hour),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		FriendRequestRate:  getEnv("FRIEND_REQUEST_RATE", "3/minute"),
		SearchPageSize:     getInt("SEARCH_PAGE_SIZE", 10),
		SearchMaxPageSize:  getInt("SEARCH_MAX_PAGE_SIZE", 10000),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		SeedUsersFile:      getEnv("SEED_USERS_FILE", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		logrus.WithField("key", key).Warnf("Invalid integer %q, using default %d", value, defaultValue)
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logrus.WithField("key", key).Warnf("Invalid duration %q, using default %s", value, defaultValue)
		return defaultValue
	}
	return d
}

func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
