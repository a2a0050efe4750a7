package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/sitelist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/sitelist/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/sitelist/internal/httpserver/mw"
)

func init() { Register(registerOps) }

func registerOps(r chi.Router, d deps.Deps) {
	r.Get("/", handlers.Root())
	r.Get("/healthz", handlers.Healthz(d))

	guarded := r.With(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	)
	guarded.Get("/readyz", handlers.Readyz(d))
	guarded.Get("/infra", handlers.Infra(d))
}
