package handler

import (
	"context"
	"net/http"

	"github.com/tdslabs/apiconsole/internal/api/middleware"
	"github.com/tdslabs/apiconsole/internal/api/response"
)

// DBPinger checks database connectivity. *pgxpool.Pool satisfies it.
type DBPinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// HealthHandler reports service and database health.
type HealthHandler struct {
	db      DBPinger
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db DBPinger, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	res := healthResponse{Status: "ok", Version: h.version, Database: "ok"}
	status := http.StatusOK
	if err := h.db.Ping(r.Context()); err != nil {
		res.Status = "degraded"
		res.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}

	response.Success(w, status, res, requestID)
}
