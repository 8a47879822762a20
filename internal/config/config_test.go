package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "MONGO_URI", "MONGO_DB", "STORAGE_BACKEND", "DB_TIMEOUT", "JWT_SECRET", "TOKEN_EXPIRY",
		"LOG_LEVEL", "FRIEND_REQUEST_RATE", "SEARCH_PAGE_SIZE", "SEARCH_MAX_PAGE_SIZE", "CORS_ALLOWED_ORIGINS", "SEED_USERS_FILE",
	} {
		t.Setenv(key, "")
	}

	expected := &Config{
		Port:               "8080",
		MongoURI:           "mongodb://localhost:27017",
		MongoDB:            "friends_manager",
		StorageBackend:     "mongo",
		DBTimeout:          10 * time.Second,
		JWTSecret:          "friends-manager-secret",
		TokenExpiry:        24 * time.Hour,
		LogLevel:           "info",
		FriendRequestRate:  "3/minute",
		SearchPageSize:     10,
		SearchMaxPageSize:  10000,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	}

	assert.Empty(t, cmp.Diff(expected, FromEnv()))
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "Memory")
	t.Setenv("DB_TIMEOUT", "3s")
	t.Setenv("TOKEN_EXPIRY", "1h")
	t.Setenv("FRIEND_REQUEST_RATE", "5/hour")
	t.Setenv("SEARCH_PAGE_SIZE", "25")
	t.Setenv("SEARCH_MAX_PAGE_SIZE", "100")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example, http://b.example,")
	t.Setenv("SEED_USERS_FILE", "testdata/users.json")

	cfg := FromEnv()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Equal(t, 3*time.Second, cfg.DBTimeout)
	assert.Equal(t, time.Hour, cfg.TokenExpiry)
	assert.Equal(t, "5/hour", cfg.FriendRequestRate)
	assert.Equal(t, 25, cfg.SearchPageSize)
	assert.Equal(t, 100, cfg.SearchMaxPageSize)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "testdata/users.json", cfg.SeedUsersFile)
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SEARCH_PAGE_SIZE", "ten")
	t.Setenv("SEARCH_MAX_PAGE_SIZE", "-1")
	t.Setenv("DB_TIMEOUT", "soon")

	cfg := FromEnv()

	assert.Equal(t, 10, cfg.SearchPageSize)
	assert.Equal(t, 10000, cfg.SearchMaxPageSize)
	assert.Equal(t, 10*time.Second, cfg.DBTimeout)
}
