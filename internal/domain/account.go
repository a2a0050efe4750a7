package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is a registered account. Email is the natural key.
type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email string             `bson:"email" json:"email"`
	Role  string             `bson:"role" json:"role"`
	Name  string             `bson:"name,omitempty" json:"name,omitempty"`
	Photo string             `bson:"photo,omitempty" json:"photo,omitempty"`
}

// Subscriber is a newsletter sign-up. Fields holds whatever else was submitted
// and is stored inline next to email.
type Subscriber struct {
	ID     primitive.ObjectID     `bson:"_id,omitempty" json:"_id"`
	Email  string                 `bson:"email" json:"email"`
	Fields map[string]interface{} `bson:",inline" json:"-"`
}

// Favourite is a site saved by a user. At most one exists per (Email, WebsiteID).
type Favourite struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email       string             `bson:"email" json:"email"`
	WebsiteID   string             `bson:"websiteId" json:"websiteId"`
	Name        string             `bson:"name" json:"name"`
	Link        string             `bson:"link" json:"link"`
	Logo        string             `bson:"logo" json:"logo"`
	Image       string             `bson:"image" json:"image"`
	Category    string             `bson:"category" json:"category"`
	Description string             `bson:"description" json:"description"`
}
