package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/sitelist/internal/domain"
	"github.com/MrSnakeDoc/sitelist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/sitelist/internal/logger"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeError maps a directory error to a status code. msg describes the
// conflict or not-found case of the calling endpoint.
func writeError(w http.ResponseWriter, r *http.Request, d deps.Deps, err error, msg string) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeMessage(w, http.StatusBadRequest, msg)
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, msg)
	default:
		d.Logger.With(
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.String("request_id", middleware.GetReqID(r.Context())),
		).Error("request failed", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, messageResponse{
			Message: "internal server error",
			Error:   err.Error(),
		})
	}
}

// decodeJSON reads a single JSON value from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
