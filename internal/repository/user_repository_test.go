package repository

import (
	"context"
	"testing"

	"github.com/Dias221467/Friends_Manager/internal/apperrors"
	"github.com/Dias221467/Friends_Manager/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func userDoc(id primitive.ObjectID, first, last, email string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "first_name", Value: first},
		{Key: "last_name", Value: last},
		{Key: "email", Value: email},
	}
}

func TestSearchFilter(t *testing.T) {
	byEmail := searchFilter(UserQuery{ByEmail: true, Email: "anna@example.com"})
	assert.Equal(t, bson.M{"email": "anna@example.com"}, byEmail)

	byName := searchFilter(UserQuery{Name: "a.n"})
	or, ok := byName["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, 2)
	assert.Equal(t, primitive.Regex{Pattern: `a\.n`, Options: "i"}, or[0]["first_name"])
	assert.Equal(t, primitive.Regex{Pattern: `a\.n`, Options: "i"}, or[1]["last_name"])
}

func TestUserRepository_GetUserByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch,
			userDoc(id, "Anna", "Smith", "anna@example.com")))

		user, err := repo.GetUserByID(context.Background(), id)
		require.NoError(mt, err)
		assert.Equal(mt, "Anna", user.FirstName)
		assert.Equal(mt, "anna@example.com", user.Email)
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch))

		_, err := repo.GetUserByID(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, apperrors.ErrUserNotFound)
	})
}

func TestUserRepository_GetUsersByIDs(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("no ids skips the query", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)

		users, err := repo.GetUsersByIDs(context.Background(), nil)
		require.NoError(mt, err)
		assert.Empty(mt, users)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch,
			userDoc(a, "Anna", "Smith", "anna@example.com"),
			userDoc(b, "Dana", "Jones", "dana@example.com"),
		))

		users, err := repo.GetUsersByIDs(context.Background(), []primitive.ObjectID{a, b})
		require.NoError(mt, err)
		assert.Len(mt, users, 2)
	})
}

func TestUserRepository_SearchUsers(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("count and page", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(12)}}),
			mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch,
				userDoc(primitive.NewObjectID(), "Anna", "Smith", "anna@example.com"),
				userDoc(primitive.NewObjectID(), "Dana", "Jones", "dana@example.com"),
			),
		)

		users, total, err := repo.SearchUsers(context.Background(), UserQuery{Name: "an"}, 10, 10)
		require.NoError(mt, err)
		assert.Equal(mt, int64(12), total)
		assert.Len(mt, users, 2)
	})

	mt.Run("count fails", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad"}))

		_, _, err := repo.SearchUsers(context.Background(), UserQuery{ByEmail: true, Email: "x@example.com"}, 0, 10)
		assert.Error(mt, err)
	})
}

func TestUserRepository_CreateUser(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user, err := repo.CreateUser(context.Background(), &models.User{FirstName: "Anna", Email: "anna@example.com"})
		require.NoError(mt, err)
		assert.False(mt, user.ID.IsZero())
	})
}
