package handler

import (
	"net/http"

	"authz/internal/middleware"
	"authz/internal/service"
	"authz/pkg/pagination"
	"authz/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
	roles        middleware.RoleSource
}

func NewAuditHandler(auditService service.AuditService, roles middleware.RoleSource) *AuditHandler {
	return &AuditHandler{auditService: auditService, roles: roles}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/audit", middleware.RequireAdmin(h.roles), h.List)
}

// List handles GET /api/audit (admin)
// @Summary      List audit log entries
// @Description  Security-relevant events, newest first
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Items per page"
// @Success      200    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Router       /api/audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	p := pagination.Parse(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, logs, total, p.Page, p.Limit))
}
