package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type auditFunc func(ctx context.Context) (int64, error)

func (f auditFunc) AuditOrphans(ctx context.Context) (int64, error) { return f(ctx) }

func newJobServer(auditor OrphanAuditor) *echo.Echo {
	e := echo.New()
	RegisterJobRoutes(e.Group("/v1"), NewJobHandlers(auditor))
	return e
}

func TestRunOrphanAudit_ReportsCount(t *testing.T) {
	e := newJobServer(auditFunc(func(context.Context) (int64, error) { return 2, nil }))

	rec := serve(e, http.MethodPost, "/v1/jobs/orphan-audit", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"orphan_items":2`)
}

func TestRunOrphanAudit_Failure(t *testing.T) {
	e := newJobServer(auditFunc(func(context.Context) (int64, error) { return 0, errors.New("statement timeout") }))

	rec := serve(e, http.MethodPost, "/v1/jobs/orphan-audit", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to run orphan item audit", decodeError(t, rec).Error.Message)
}
