package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/sitelist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/sitelist/internal/httpserver/handlers"
)

func init() { Register(registerUsers) }

func registerUsers(r chi.Router, d deps.Deps) {
	r.Put("/users", handlers.EnsureUser(d))
	r.Get("/users", handlers.Users(d))
	r.Get("/users/role/{email}", handlers.UserRole(d))
	r.Delete("/deleteUser/{id}", handlers.DeleteUser(d))
}
