package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/MrSnakeDoc/sitelist/internal/domain"
)

func TestEmailFilter(t *testing.T) {
	if f := emailFilter(""); len(f) != 0 {
		t.Errorf("emailFilter(\"\") = %v, want empty filter", f)
	}
	if f := emailFilter("a@b.c"); f["email"] != "a@b.c" {
		t.Errorf("emailFilter(a@b.c) = %v", f)
	}
}

func TestUpdateSetsKeepTheirFieldSets(t *testing.T) {
	sub := submissionSet(domain.SubmissionUpdate{Name: "n", SubCategory: "s"})
	for _, k := range []string{"name", "link", "category", "subCategory", "description"} {
		if _, ok := sub[k]; !ok {
			t.Errorf("submissionSet missing %q", k)
		}
	}
	if _, ok := sub["profession"]; ok {
		t.Error("submissionSet must not write profession")
	}

	upd := siteUpdateSet(domain.SiteUpdate{Name: "n", Profession: "p"})
	for _, k := range []string{"name", "link", "category", "profession", "image", "logo", "description"} {
		if _, ok := upd[k]; !ok {
			t.Errorf("siteUpdateSet missing %q", k)
		}
	}
	if _, ok := upd["subCategory"]; ok {
		t.Error("siteUpdateSet must not write subCategory")
	}
}

func TestUserOnInsertOmitsEmail(t *testing.T) {
	doc := userOnInsert(&domain.User{Email: "a@b.c", Role: "admin", Name: "A"})
	if _, ok := doc["email"]; ok {
		t.Error("userOnInsert must not carry email")
	}
	if doc["role"] != "admin" || doc["name"] != "A" {
		t.Errorf("userOnInsert = %v", doc)
	}
	if _, ok := doc["photo"]; ok {
		t.Error("empty photo should be omitted")
	}
}

func TestToUpdateResult(t *testing.T) {
	oid := primitive.NewObjectID()
	got := toUpdateResult(&mongo.UpdateResult{UpsertedCount: 1, UpsertedID: oid})
	if got.UpsertedID == nil || *got.UpsertedID != oid {
		t.Errorf("UpsertedID = %v, want %s", got.UpsertedID, oid.Hex())
	}

	got = toUpdateResult(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1})
	if got.UpsertedID != nil || got.MatchedCount != 1 || !got.Acknowledged {
		t.Errorf("toUpdateResult() = %+v", got)
	}
}
