// Package storetest checks a store.Store implementation against the behavior
// the directory relies on. Backends call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/MrSnakeDoc/sitelist/internal/domain"
	"github.com/MrSnakeDoc/sitelist/internal/store"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) store.Store

// Run runs every contract check as a subtest.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	checks := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"ApprovePendingMovesSite", testApprovePending},
		{"InvalidIDs", testInvalidIDs},
		{"LatestSitesOrderAndLimit", testLatestSites},
		{"ListSitesEmailFilter", testListSitesFilter},
		{"SiteExistsMatchesNameOrLink", testSiteExists},
		{"UpdateSiteReportsNoChange", testUpdateSite},
		{"UpsertSubmissionCreatesMissing", testUpsertSubmission},
		{"EnsureUserKeepsFirstRole", testEnsureUser},
		{"FavouriteConflict", testFavourites},
		{"DeleteReportsCount", testDeletes},
	}

	for _, c := range checks {
		c := c
		t.Run(c.name, func(t *testing.T) {
			c.fn(t, newStore(t))
		})
	}
}

func testApprovePending(t *testing.T, s store.Store) {
	ctx := context.Background()

	site := &domain.Website{Name: "Go", Link: "https://go.dev", Date: "2024-01-01"}
	res, err := s.InsertPending(ctx, site)
	if err != nil {
		t.Fatalf("InsertPending() error = %v", err)
	}
	id := res.InsertedID.Hex()

	approved, err := s.ApprovePending(ctx, id)
	if err != nil {
		t.Fatalf("ApprovePending() error = %v", err)
	}
	if approved.ID != res.InsertedID || approved.Name != "Go" {
		t.Errorf("approved = %+v, want id %s", approved, id)
	}

	if _, err := s.GetSite(ctx, id); err != nil {
		t.Errorf("approved site not in AllWebsites: %v", err)
	}
	pending, err := s.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected empty pending list, got %d", len(pending))
	}

	if _, err := s.ApprovePending(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second ApprovePending() error = %v, want ErrNotFound", err)
	}
}

func testInvalidIDs(t *testing.T, s store.Store) {
	ctx := context.Background()

	if _, err := s.GetSite(ctx, "nope"); !errors.Is(err, domain.ErrInvalidID) {
		t.Errorf("GetSite() error = %v, want ErrInvalidID", err)
	}
	if _, err := s.ApprovePending(ctx, "nope"); !errors.Is(err, domain.ErrInvalidID) {
		t.Errorf("ApprovePending() error = %v, want ErrInvalidID", err)
	}
	if _, err := s.DeleteFavourite(ctx, "123"); !errors.Is(err, domain.ErrInvalidID) {
		t.Errorf("DeleteFavourite() error = %v, want ErrInvalidID", err)
	}
	if _, err := s.UpsertSubmission(ctx, "xyz", domain.SubmissionUpdate{}); !errors.Is(err, domain.ErrInvalidID) {
		t.Errorf("UpsertSubmission() error = %v, want ErrInvalidID", err)
	}
}

func testLatestSites(t *testing.T, s store.Store) {
	ctx := context.Background()

	for _, d := range []string{"2021-01-01", "2024-01-01", "2019-01-01", "2023-01-01", "2020-01-01", "2022-01-01"} {
		if _, err := s.InsertSite(ctx, &domain.Website{Name: d, Date: d}); err != nil {
			t.Fatalf("InsertSite() error = %v", err)
		}
	}

	latest, err := s.LatestSites(ctx, 4)
	if err != nil {
		t.Fatalf("LatestSites() error = %v", err)
	}
	want := []string{"2024-01-01", "2023-01-01", "2022-01-01", "2021-01-01"}
	if len(latest) != len(want) {
		t.Fatalf("LatestSites() returned %d, want %d", len(latest), len(want))
	}
	for i, w := range want {
		if latest[i].Date != w {
			t.Errorf("latest[%d] = %s, want %s", i, latest[i].Date, w)
		}
	}

	n, err := s.CountSites(ctx)
	if err != nil || n != 6 {
		t.Errorf("CountSites() = %d, %v, want 6", n, err)
	}
}

func testListSitesFilter(t *testing.T, s store.Store) {
	ctx := context.Background()

	for _, email := range []string{"a@x.io", "b@x.io", "a@x.io"} {
		if _, err := s.InsertSite(ctx, &domain.Website{Name: email, Email: email}); err != nil {
			t.Fatalf("InsertSite() error = %v", err)
		}
	}

	mine, err := s.ListSites(ctx, "a@x.io")
	if err != nil || len(mine) != 2 {
		t.Errorf("ListSites(a) = %d, %v, want 2", len(mine), err)
	}
	all, err := s.ListSites(ctx, "")
	if err != nil || len(all) != 3 {
		t.Errorf("ListSites() = %d, %v, want 3", len(all), err)
	}
}

func testSiteExists(t *testing.T, s store.Store) {
	ctx := context.Background()

	if _, err := s.InsertSite(ctx, &domain.Website{Name: "Go", Link: "https://go.dev"}); err != nil {
		t.Fatalf("InsertSite() error = %v", err)
	}
	if _, err := s.InsertPending(ctx, &domain.Website{Name: "Rust", Link: "https://rust-lang.org"}); err != nil {
		t.Fatalf("InsertPending() error = %v", err)
	}

	tests := []struct {
		name, link string
		want       bool
	}{
		{"Go", "https://elsewhere.dev", true},
		{"Golang", "https://go.dev", true},
		{"Rust", "https://rust-lang.org", false}, // pending only
		{"Zig", "https://ziglang.org", false},
	}
	for _, tt := range tests {
		got, err := s.SiteExists(ctx, tt.name, tt.link)
		if err != nil {
			t.Fatalf("SiteExists() error = %v", err)
		}
		if got != tt.want {
			t.Errorf("SiteExists(%q, %q) = %v, want %v", tt.name, tt.link, got, tt.want)
		}
	}
}

func testUpdateSite(t *testing.T, s store.Store) {
	ctx := context.Background()

	res, err := s.InsertSite(ctx, &domain.Website{Name: "Go", Link: "https://go.dev", SubCategory: "lang"})
	if err != nil {
		t.Fatalf("InsertSite() error = %v", err)
	}
	id := res.InsertedID.Hex()
	upd := domain.SiteUpdate{Name: "Go", Link: "https://go.dev", Profession: "dev", Logo: "logo.png"}

	ur, err := s.UpdateSite(ctx, id, upd)
	if err != nil {
		t.Fatalf("UpdateSite() error = %v", err)
	}
	if ur.MatchedCount != 1 || ur.ModifiedCount != 1 {
		t.Errorf("first UpdateSite() = %+v", ur)
	}

	ur, err = s.UpdateSite(ctx, id, upd)
	if err != nil {
		t.Fatalf("UpdateSite() error = %v", err)
	}
	if ur.MatchedCount != 1 || ur.ModifiedCount != 0 {
		t.Errorf("unchanged UpdateSite() = %+v", ur)
	}

	site, err := s.GetSite(ctx, id)
	if err != nil {
		t.Fatalf("GetSite() error = %v", err)
	}
	if site.Profession != "dev" || site.SubCategory != "lang" {
		t.Errorf("site after update = %+v, want profession set and subCategory kept", site)
	}

	ur, err = s.UpdateSite(ctx, "0123456789abcdef01234567", upd)
	if err != nil {
		t.Fatalf("UpdateSite(missing) error = %v", err)
	}
	if ur.MatchedCount != 0 || ur.UpsertedCount != 0 {
		t.Errorf("UpdateSite(missing) = %+v, want no match and no upsert", ur)
	}
}

func testUpsertSubmission(t *testing.T, s store.Store) {
	ctx := context.Background()
	id := "0123456789abcdef01234567"

	ur, err := s.UpsertSubmission(ctx, id, domain.SubmissionUpdate{Name: "Go", SubCategory: "lang"})
	if err != nil {
		t.Fatalf("UpsertSubmission() error = %v", err)
	}
	if ur.UpsertedCount != 1 || ur.UpsertedID == nil || ur.UpsertedID.Hex() != id {
		t.Errorf("UpsertSubmission() = %+v, want upsert of %s", ur, id)
	}

	ur, err = s.UpsertSubmission(ctx, id, domain.SubmissionUpdate{Name: "Golang", SubCategory: "lang"})
	if err != nil {
		t.Fatalf("second UpsertSubmission() error = %v", err)
	}
	if ur.MatchedCount != 1 || ur.ModifiedCount != 1 || ur.UpsertedCount != 0 {
		t.Errorf("second UpsertSubmission() = %+v", ur)
	}

	site, err := s.GetSite(ctx, id)
	if err != nil || site.Name != "Golang" {
		t.Errorf("GetSite() = %+v, %v", site, err)
	}
}

func testEnsureUser(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, created, err := s.EnsureUser(ctx, &domain.User{Email: "a@x.io", Role: "admin"})
	if err != nil || !created {
		t.Fatalf("EnsureUser() created = %v, err = %v", created, err)
	}
	_, created, err = s.EnsureUser(ctx, &domain.User{Email: "a@x.io", Role: "user"})
	if err != nil || created {
		t.Fatalf("second EnsureUser() created = %v, err = %v", created, err)
	}

	u, err := s.FindUserByEmail(ctx, "a@x.io")
	if err != nil {
		t.Fatalf("FindUserByEmail() error = %v", err)
	}
	if u.Role != "admin" {
		t.Errorf("role = %q, want admin", u.Role)
	}

	if _, err := s.FindUserByEmail(ctx, "nobody@x.io"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("FindUserByEmail(unknown) error = %v, want ErrNotFound", err)
	}

	users, err := s.ListUsers(ctx)
	if err != nil || len(users) != 1 {
		t.Errorf("ListUsers() = %d, %v, want 1", len(users), err)
	}
}

func testFavourites(t *testing.T, s store.Store) {
	ctx := context.Background()

	if _, err := s.InsertFavourite(ctx, &domain.Favourite{Email: "a@x.io", WebsiteID: "w1"}); err != nil {
		t.Fatalf("InsertFavourite() error = %v", err)
	}
	if _, err := s.InsertFavourite(ctx, &domain.Favourite{Email: "a@x.io", WebsiteID: "w1"}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate InsertFavourite() error = %v, want ErrConflict", err)
	}
	if _, err := s.InsertFavourite(ctx, &domain.Favourite{Email: "a@x.io", WebsiteID: "w2"}); err != nil {
		t.Errorf("other website InsertFavourite() error = %v", err)
	}

	favs, err := s.ListFavourites(ctx, "a@x.io")
	if err != nil || len(favs) != 2 {
		t.Errorf("ListFavourites(a) = %d, %v, want 2", len(favs), err)
	}
	none, err := s.ListFavourites(ctx, "b@x.io")
	if err != nil || len(none) != 0 {
		t.Errorf("ListFavourites(b) = %d, %v, want 0", len(none), err)
	}
}

func testDeletes(t *testing.T, s store.Store) {
	ctx := context.Background()

	res, err := s.InsertSubscriber(ctx, &domain.Subscriber{Email: "a@x.io"})
	if err != nil || res.InsertedID.IsZero() {
		t.Fatalf("InsertSubscriber() = %+v, %v", res, err)
	}

	site, _ := s.InsertSite(ctx, &domain.Website{Name: "Go"})
	pending, _ := s.InsertPending(ctx, &domain.Website{Name: "Rust"})
	fav, _ := s.InsertFavourite(ctx, &domain.Favourite{Email: "a@x.io", WebsiteID: "w"})
	_, _, _ = s.EnsureUser(ctx, &domain.User{Email: "a@x.io"})
	user, err := s.FindUserByEmail(ctx, "a@x.io")
	if err != nil {
		t.Fatalf("FindUserByEmail() error = %v", err)
	}

	deletes := []struct {
		name string
		fn   func(id string) (domain.DeleteResult, error)
		id   string
	}{
		{"site", func(id string) (domain.DeleteResult, error) { return s.DeleteSite(ctx, id) }, site.InsertedID.Hex()},
		{"pending", func(id string) (domain.DeleteResult, error) { return s.DeletePending(ctx, id) }, pending.InsertedID.Hex()},
		{"favourite", func(id string) (domain.DeleteResult, error) { return s.DeleteFavourite(ctx, id) }, fav.InsertedID.Hex()},
		{"user", func(id string) (domain.DeleteResult, error) { return s.DeleteUser(ctx, id) }, user.ID.Hex()},
	}
	for _, d := range deletes {
		first, err := d.fn(d.id)
		if err != nil || !first.Acknowledged || first.DeletedCount != 1 {
			t.Errorf("delete %s = %+v, %v, want 1 deleted", d.name, first, err)
		}
		second, err := d.fn(d.id)
		if err != nil || second.DeletedCount != 0 {
			t.Errorf("second delete %s = %+v, %v, want 0 deleted", d.name, second, err)
		}
	}
}
