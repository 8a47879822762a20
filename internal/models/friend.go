package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Friend list statuses accepted by the listing endpoint.
const (
	StatusAccepted = "accepted"
	StatusPending  = "pending"
)

// FriendEdge is a directed friend request from RequesterID to TargetID.
// Pending is true until the target accepts; a rejected request is deleted.
type FriendEdge struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequesterID primitive.ObjectID `bson:"user" json:"user"`
	TargetID    primitive.ObjectID `bson:"friend" json:"friend"`
	Pending     bool               `bson:"pending" json:"pending"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// Counterpart returns the other side of the edge as seen by userID.
func (e *FriendEdge) Counterpart(userID primitive.ObjectID) primitive.ObjectID {
	if e.RequesterID == userID {
		return e.TargetID
	}
	return e.RequesterID
}
