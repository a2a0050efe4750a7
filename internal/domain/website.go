package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Website is a listed (or to-be-listed) site.
//
// A Website has no status field: it lives either in the Pending collection
// or in the AllWebsites collection, and that membership is its workflow state.
type Website struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// ID is generated by the store on insert and kept when a site is approved.
	ID primitive.ObjectID `bson:"_id,omitempty" json:"_id"`

	// ─────────────────────────────
	// Listing data
	// ─────────────────────────────

	Name        string `bson:"name" json:"name"`
	Link        string `bson:"link" json:"link"`
	Category    string `bson:"category" json:"category"`
	SubCategory string `bson:"subCategory,omitempty" json:"subCategory,omitempty"`
	Profession  string `bson:"profession,omitempty" json:"profession,omitempty"`
	Description string `bson:"description" json:"description"`
	Logo        string `bson:"logo,omitempty" json:"logo,omitempty"`
	Image       string `bson:"image,omitempty" json:"image,omitempty"`

	// Date is a sortable timestamp string (RFC 3339 or YYYY-MM-DD).
	// Listings sort on it lexicographically, newest first.
	Date string `bson:"date" json:"date"`

	// ─────────────────────────────
	// Provenance
	// ─────────────────────────────

	// Email of the submitter. Correlates with User.Email, not enforced.
	Email string `bson:"email" json:"email"`
}

// StampDate sets Date to now when the submitter did not send one.
func (w *Website) StampDate(now time.Time) {
	if w.Date == "" {
		w.Date = now.UTC().Format(time.RFC3339)
	}
}

// SubmissionUpdate is the field set written by PUT /submitedWebsite/{id}.
type SubmissionUpdate struct {
	Name        string `json:"name"`
	Link        string `json:"link"`
	Category    string `json:"category"`
	SubCategory string `json:"subCategory"`
	Description string `json:"description"`
}

// SiteUpdate is the field set written by PUT /updateSite/{id}.
type SiteUpdate struct {
	Name        string `json:"name"`
	Link        string `json:"link"`
	Category    string `json:"category"`
	Profession  string `json:"profession"`
	Image       string `json:"image"`
	Logo        string `json:"logo"`
	Description string `json:"description"`
}
