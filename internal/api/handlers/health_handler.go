package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/models"
	"gorm.io/gorm"
)

const (
	statusUp   = "up"
	statusDown = "down"
)

// schemaTables are the tables database.Migrate must have created before
// the voicemail routes can serve
var schemaTables = []struct {
	name  string
	model any
}{
	{name: models.Account{}.TableName(), model: &models.Account{}},
	{name: models.Voicemail{}.TableName(), model: &models.Voicemail{}},
}

// HealthHandler reports whether the voicemail store is reachable and migrated
type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthResponse is the liveness body
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// ReadyResponse is the readiness body. Tables maps each schema table to up or down.
type ReadyResponse struct {
	Status string            `json:"status"`
	Reason string            `json:"reason,omitempty"`
	Tables map[string]string `json:"tables,omitempty"`
}

// Health handles GET /health: the database answers a ping
func (h *HealthHandler) Health(c echo.Context) error {
	if err := h.ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Database: statusDown})
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Database: statusUp})
}

// Ready handles GET /ready: the database answers and holds the accounts
// and voicemails tables
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, ReadyResponse{
			Status: "not ready",
			Reason: "database ping failed",
		})
	}

	tables := make(map[string]string, len(schemaTables))
	missing := false
	migrator := h.db.WithContext(ctx).Migrator()
	for _, table := range schemaTables {
		if migrator.HasTable(table.model) {
			tables[table.name] = statusUp
			continue
		}
		tables[table.name] = statusDown
		missing = true
	}

	if missing {
		return c.JSON(http.StatusServiceUnavailable, ReadyResponse{
			Status: "not ready",
			Reason: "schema not migrated",
			Tables: tables,
		})
	}
	return c.JSON(http.StatusOK, ReadyResponse{Status: "ready", Tables: tables})
}

func (h *HealthHandler) ping(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
