package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/sitelist/internal/domain"
	"github.com/MrSnakeDoc/sitelist/internal/httpserver/deps"
)

// Subscribe stores the posted document as is. The email is kept as a typed
// field; any other key is stored next to it.
func Subscribe(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if err := decodeJSON(w, r, &body); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}

		res, err := d.Directory.Subscribe(r.Context(), subscriberFromBody(body))
		if err != nil {
			writeError(w, r, d, err, "")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func subscriberFromBody(body map[string]interface{}) *domain.Subscriber {
	sub := &domain.Subscriber{Fields: make(map[string]interface{}, len(body))}
	for k, v := range body {
		switch k {
		case "_id":
			// store-generated
		case "email":
			if s, ok := v.(string); ok {
				sub.Email = s
			}
		default:
			sub.Fields[k] = v
		}
	}
	return sub
}

// AddFavourite answers 201 on insert and 400 when the user already saved the site.
func AddFavourite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fav domain.Favourite
		if err := decodeJSON(w, r, &fav); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}

		res, err := d.Directory.AddFavourite(r.Context(), &fav)
		if err != nil {
			writeError(w, r, d, err, "This website is already in your favorites.")
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// Favourites filters favourites by the optional ?email= query.
func Favourites(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		favs, err := d.Directory.Favourites(r.Context(), r.URL.Query().Get("email"))
		if err != nil {
			writeError(w, r, d, err, "")
			return
		}
		writeJSON(w, http.StatusOK, favs)
	}
}

func DeleteFavourite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Directory.DeleteFavourite(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d, err, "Favourite not found")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
