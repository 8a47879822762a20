// Package seed loads directory users from a JSON file. Identity is owned
// elsewhere, so this is how local and test deployments get users to befriend.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Dias221467/Friends_Manager/internal/models"
	"github.com/sirupsen/logrus"
)

// UserCreator is satisfied by both user repositories.
type UserCreator interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
}

// ReadUsers parses a JSON array of {first_name, last_name, email} objects.
func ReadUsers(path string) ([]models.User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	for i, u := range users {
		if strings.TrimSpace(u.Email) == "" {
			return nil, fmt.Errorf("seed user %d has no email", i)
		}
	}
	return users, nil
}

// Load creates every user in path. Users that fail to insert, for example
// because the email already exists, are logged and skipped.
func Load(ctx context.Context, repo UserCreator, path string) (int, error) {
	users, err := ReadUsers(path)
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range users {
		if _, err := repo.CreateUser(ctx, &users[i]); err != nil {
			logrus.WithError(err).WithField("email", users[i].Email).Warn("Skipping seed user")
			continue
		}
		created++
	}
	logrus.WithFields(logrus.Fields{"file": path, "created": created}).Info("Seed users loaded")
	return created, nil
}
