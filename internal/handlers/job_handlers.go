package handlers

import (
	"context"
	"net/http"
	"time"

	"orderdesk/internal/common"

	"github.com/labstack/echo/v4"
)

// OrphanAuditor runs the orphan item audit on demand
type OrphanAuditor interface {
	AuditOrphans(ctx context.Context) (int64, error)
}

type JobHandlers struct {
	auditor OrphanAuditor
}

func NewJobHandlers(auditor OrphanAuditor) *JobHandlers {
	return &JobHandlers{auditor: auditor}
}

// RunOrphanAudit handles POST /jobs/orphan-audit
func (h *JobHandlers) RunOrphanAudit(c echo.Context) error {
	started := time.Now()
	count, err := h.auditor.AuditOrphans(c.Request().Context())
	if err != nil {
		return common.SendError(c, "Audit", "run orphan item audit", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"job":          "orphan-item-audit",
		"orphan_items": count,
		"duration_ms":  time.Since(started).Milliseconds(),
	})
}

// RegisterJobRoutes mounts manual job triggers
func RegisterJobRoutes(g *echo.Group, h *JobHandlers) {
	g.POST("/jobs/orphan-audit", h.RunOrphanAudit)
}
