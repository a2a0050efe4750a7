package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/sitelist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/sitelist/internal/httpserver/handlers"
)

func init() { Register(registerSites) }

func registerSites(r chi.Router, d deps.Deps) {
	r.Get("/allSites", handlers.AllSites(d))
	r.Get("/allSites/{id}", handlers.GetSite(d))
	r.Get("/personalSites", handlers.PersonalSites(d))
	r.Get("/latest-sites", handlers.LatestSites(d))
	r.Get("/pending-sites", handlers.PendingSites(d))

	r.With(writeLimited(d)).Post("/submitedWebsite", handlers.SubmitSite(d))
	r.Put("/submitedWebsite/{id}", handlers.UpsertSubmission(d))
	r.Put("/updateSite/{id}", handlers.UpdateSite(d))
	r.Post("/approve/{id}", handlers.ApproveSite(d))
	r.Delete("/deleteSite/{id}", handlers.DeleteSite(d))
	r.Delete("/deletePendingSite/{id}", handlers.DeletePendingSite(d))
}
