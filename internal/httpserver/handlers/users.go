package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/sitelist/internal/domain"
	"github.com/MrSnakeDoc/sitelist/internal/httpserver/deps"
)

// userExistsResponse is returned by PUT /users when the email is already registered.
type userExistsResponse struct {
	Message    string  `json:"message"`
	InsertedID *string `json:"insertedId"`
}

type roleResponse struct {
	Role string `json:"role"`
}

// EnsureUser creates the user on first sign-in. Later calls for the same
// email change nothing.
func EnsureUser(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var user domain.User
		if err := decodeJSON(w, r, &user); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}

		res, created, err := d.Directory.EnsureUser(r.Context(), &user)
		if err != nil {
			writeError(w, r, d, err, "")
			return
		}
		if !created {
			writeJSON(w, http.StatusOK, userExistsResponse{Message: "user already exist"})
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func Users(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := d.Directory.Users(r.Context())
		if err != nil {
			writeError(w, r, d, err, "")
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

func UserRole(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, err := emailParam(r)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid email")
			return
		}

		role, err := d.Directory.UserRole(r.Context(), email)
		if err != nil {
			writeError(w, r, d, err, "user not found")
			return
		}
		writeJSON(w, http.StatusOK, roleResponse{Role: role})
	}
}

// emailParam returns the decoded {email} path value. chi matches on RawPath
// when the request carries one, leaving the value escaped.
func emailParam(r *http.Request) (string, error) {
	email := chi.URLParam(r, "email")
	if r.URL.RawPath == "" {
		return email, nil
	}
	return url.PathUnescape(email)
}

func DeleteUser(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Directory.DeleteUser(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d, err, "")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
