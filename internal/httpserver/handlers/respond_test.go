package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrSnakeDoc/sitelist/internal/domain"
	"github.com/MrSnakeDoc/sitelist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/sitelist/internal/logger"
)

func TestWriteErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid id", fmt.Errorf("%w: nope", domain.ErrInvalidID), http.StatusBadRequest},
		{"conflict", domain.ErrConflict, http.StatusBadRequest},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	d := deps.Deps{Logger: logger.Nop()}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(w, httptest.NewRequest(http.MethodGet, "/allSites", nil), d, tt.err, "msg")
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestWriteErrorLogsRequestFields(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	d := deps.Deps{Logger: logger.FromZap(zap.New(core))}

	r := httptest.NewRequest(http.MethodDelete, "/deleteSite/abc", nil)
	r = r.WithContext(context.WithValue(r.Context(), middleware.RequestIDKey, "req-1"))
	w := httptest.NewRecorder()
	writeError(w, r, d, errors.New("boom"), "")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	want := map[string]string{
		"method":     http.MethodDelete,
		"path":       "/deleteSite/abc",
		"request_id": "req-1",
		"error":      "boom",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("field %s = %v, want %q", k, fields[k], v)
		}
	}
}
