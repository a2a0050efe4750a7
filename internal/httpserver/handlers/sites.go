package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MrSnakeDoc/sitelist/internal/domain"
	"github.com/MrSnakeDoc/sitelist/internal/httpserver/deps"
)

const (
	msgSiteExists     = "This website is already listed."
	msgSiteNotFound   = "website not found"
	msgNotPending     = "website is not pending approval"
	msgNothingUpdated = "website not found or nothing to update"
)

type approveResponse struct {
	Message    string             `json:"message"`
	InsertedID primitive.ObjectID `json:"insertedId"`
}

func AllSites(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sites, err := d.Directory.AllSites(r.Context())
		if err != nil {
			writeError(w, r, d, err, "")
			return
		}
		writeJSON(w, http.StatusOK, sites)
	}
}

// PersonalSites filters approved sites by the optional ?email= query.
func PersonalSites(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sites, err := d.Directory.PersonalSites(r.Context(), r.URL.Query().Get("email"))
		if err != nil {
			writeError(w, r, d, err, "")
			return
		}
		writeJSON(w, http.StatusOK, sites)
	}
}

func LatestSites(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sites, err := d.Directory.LatestSites(r.Context())
		if err != nil {
			writeError(w, r, d, err, "")
			return
		}
		writeJSON(w, http.StatusOK, sites)
	}
}

func PendingSites(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sites, err := d.Directory.PendingSites(r.Context())
		if err != nil {
			writeError(w, r, d, err, "")
			return
		}
		writeJSON(w, http.StatusOK, sites)
	}
}

func GetSite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		site, err := d.Directory.Site(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d, err, msgSiteNotFound)
			return
		}
		writeJSON(w, http.StatusOK, site)
	}
}

// SubmitSite queues a site for approval. A site whose name or link is already
// listed is rejected with 400.
func SubmitSite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var site domain.Website
		if err := decodeJSON(w, r, &site); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}

		res, err := d.Directory.SubmitSite(r.Context(), &site)
		if err != nil {
			writeError(w, r, d, err, msgSiteExists)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func UpsertSubmission(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd domain.SubmissionUpdate
		if err := decodeJSON(w, r, &upd); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}

		res, err := d.Directory.UpsertSubmission(r.Context(), chi.URLParam(r, "id"), upd)
		if err != nil {
			writeError(w, r, d, err, "")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// UpdateSite answers 404 with a message when nothing matched or nothing
// changed.
func UpdateSite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd domain.SiteUpdate
		if err := decodeJSON(w, r, &upd); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}

		res, err := d.Directory.UpdateSite(r.Context(), chi.URLParam(r, "id"), upd)
		if err != nil {
			writeError(w, r, d, err, msgNothingUpdated)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func ApproveSite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		site, err := d.Directory.ApproveSite(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d, err, msgNotPending)
			return
		}
		writeJSON(w, http.StatusOK, approveResponse{
			Message:    "Website approved successfully",
			InsertedID: site.ID,
		})
	}
}

func DeleteSite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Directory.DeleteSite(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d, err, "")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func DeletePendingSite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Directory.DeletePendingSite(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d, err, "")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
