package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestRateLimitRepository_Increment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	deleted := func(n int) bson.D {
		return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n})
	}

	mt.Run("within window", func(mt *mtest.T) {
		repo := NewRateLimitRepository(mt.DB)
		mt.AddMockResponses(
			deleted(0),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: "friend_request-u1"},
				{Key: "count", Value: int32(1)},
			}}),
		)

		allowed, err := repo.Increment(context.Background(), "friend_request-u1", 3, time.Minute)
		require.NoError(mt, err)
		assert.True(mt, allowed)
	})

	mt.Run("window full", func(mt *mtest.T) {
		repo := NewRateLimitRepository(mt.DB)
		mt.AddMockResponses(
			deleted(0),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11000, Name: "DuplicateKey", Message: "E11000 duplicate key error"}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)

		allowed, err := repo.Increment(context.Background(), "friend_request-u1", 3, time.Minute)
		require.NoError(mt, err)
		assert.False(mt, allowed)
	})

	mt.Run("concurrent first attempt", func(mt *mtest.T) {
		repo := NewRateLimitRepository(mt.DB)
		mt.AddMockResponses(
			deleted(0),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11000, Name: "DuplicateKey", Message: "E11000 duplicate key error"}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		allowed, err := repo.Increment(context.Background(), "friend_request-u1", 3, time.Minute)
		require.NoError(mt, err)
		assert.True(mt, allowed)
	})

	mt.Run("db error", func(mt *mtest.T) {
		repo := NewRateLimitRepository(mt.DB)
		mt.AddMockResponses(
			deleted(0),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad"}),
		)

		_, err := repo.Increment(context.Background(), "friend_request-u1", 3, time.Minute)
		assert.Error(mt, err)
	})
}
