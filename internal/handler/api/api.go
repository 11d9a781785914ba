// Package api provides the JSON HTTP handlers for the exam activity
// logging service.
package api

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openexam/examtrail/internal/middleware"
	"github.com/openexam/examtrail/internal/store"
	"github.com/openexam/examtrail/internal/timeline"
)

// Config holds the handler dependencies that come from application
// configuration.
type Config struct {
	JWTSecret   []byte
	AdminEmails []string
	OrgDomain   string
	OrgTag      string
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db         *sql.DB
	queries    *store.Queries
	anchor     *timeline.Anchor
	logger     *slog.Logger
	cfg        Config
	protection *middleware.LoginProtection
	startTime  time.Time
}

// NewHandler creates a new API handler.
func NewHandler(db *sql.DB, logger *slog.Logger, cfg Config) *Handler {
	queries := store.New(db)
	return &Handler{
		db:         db,
		queries:    queries,
		anchor:     timeline.NewAnchor(queries, logger),
		logger:     logger,
		cfg:        cfg,
		protection: middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig()),
		startTime:  time.Now(),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeSuccess writes a 200 response with success:true merged into data.
func writeSuccess(w http.ResponseWriter, data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}
	data["success"] = true
	writeJSON(w, http.StatusOK, data)
}

// writeError writes the error envelope used across the API.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{
		"success": false,
		"message": message,
	})
}

// clientIP extracts the caller address for rate limiting. The chi
// RealIP middleware has already folded proxy headers into RemoteAddr.
func clientIP(r *http.Request) string {
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx > 0 {
		ip = ip[:idx]
	}
	ip = strings.TrimPrefix(ip, "[")
	return strings.TrimSuffix(ip, "]")
}

// Health handles GET /health - reports service and database status.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	if err := h.db.Ping(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "degraded",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
	})
}
