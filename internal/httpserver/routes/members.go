package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/sitelist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/sitelist/internal/httpserver/handlers"
)

func init() { Register(registerMembers) }

// registerMembers mounts newsletter and favourite routes.
func registerMembers(r chi.Router, d deps.Deps) {
	limited := r.With(writeLimited(d))
	limited.Post("/subscribe", handlers.Subscribe(d))
	limited.Post("/favourite", handlers.AddFavourite(d))

	r.Get("/getFavourite", handlers.Favourites(d))
	r.Delete("/deleteFavourite/{id}", handlers.DeleteFavourite(d))
}
