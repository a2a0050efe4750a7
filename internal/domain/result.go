package domain

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when a lookup by id or email matches nothing.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a uniqueness precondition is violated.
	ErrConflict = errors.New("conflict")
	// ErrInvalidID is returned when a path id is not a valid ObjectID.
	ErrInvalidID = errors.New("invalid id")
)

// ParseID converts a 24-hex string into an ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// InsertResult acknowledges a single-document insert.
type InsertResult struct {
	Acknowledged bool               `json:"acknowledged"`
	InsertedID   primitive.ObjectID `json:"insertedId"`
}

// UpdateResult acknowledges a single-document update or upsert.
type UpdateResult struct {
	Acknowledged  bool                `json:"acknowledged"`
	MatchedCount  int64               `json:"matchedCount"`
	ModifiedCount int64               `json:"modifiedCount"`
	UpsertedCount int64               `json:"upsertedCount"`
	UpsertedID    *primitive.ObjectID `json:"upsertedId"`
}

// DeleteResult acknowledges a single-document delete.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}
