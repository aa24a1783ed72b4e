package handler

import (
	"net/http"

	"authz/internal/middleware"
	"authz/internal/service"
	"authz/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PermissionHandler struct {
	adminService service.RBACAdminService
	permService  service.PermissionService
}

func NewPermissionHandler(adminService service.RBACAdminService, permService service.PermissionService) *PermissionHandler {
	return &PermissionHandler{adminService: adminService, permService: permService}
}

func (h *PermissionHandler) RegisterRoutes(router *gin.RouterGroup) {
	perms := router.Group("/api/permissions")

	perms.GET("/my", middleware.RequireAuth(), h.MyPermissions)

	admin := perms.Group("", middleware.RequireAdmin(h.permService))
	{
		admin.GET("/roles", h.ListRoles)
		admin.GET("/resources", h.ListResources)
		admin.GET("/rules", h.ListRules)
		admin.GET("/rules/:id", h.GetRule)
		admin.PATCH("/rules/:id", h.UpdateRule)
		admin.GET("/user-roles", h.ListAssignments)
		admin.POST("/user-roles", h.AssignRole)
		admin.DELETE("/user-roles/:id", h.RemoveAssignment)
	}
}

// MyPermissions handles GET /api/permissions/my
// @Summary      Get own effective permissions
// @Description  Per-resource OR of every grant across the caller's roles
// @Tags         permissions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /api/permissions/my [get]
func (h *PermissionHandler) MyPermissions(c *gin.Context) {
	user := middleware.CurrentUser(c)

	roles, err := h.permService.RolesForUser(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	grants, err := h.permService.EffectivePermissions(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}

	roleNames := make([]string, 0, len(roles))
	for _, r := range roles {
		roleNames = append(roleNames, r.Name)
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"user":        user.Email,
		"roles":       roleNames,
		"permissions": grants,
	}))
}

// ListRoles handles GET /api/permissions/roles (admin)
// @Summary      List roles
// @Tags         permissions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /api/permissions/roles [get]
func (h *PermissionHandler) ListRoles(c *gin.Context) {
	roles, err := h.adminService.ListRoles(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, roles))
}

// ListResources handles GET /api/permissions/resources (admin)
// @Summary      List resources
// @Tags         permissions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /api/permissions/resources [get]
func (h *PermissionHandler) ListResources(c *gin.Context) {
	resources, err := h.adminService.ListResources(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, resources))
}

// ListRules handles GET /api/permissions/rules (admin)
// @Summary      List permission rules
// @Tags         permissions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /api/permissions/rules [get]
func (h *PermissionHandler) ListRules(c *gin.Context) {
	rules, err := h.adminService.ListRules(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rules))
}

// GetRule handles GET /api/permissions/rules/:id (admin)
// @Summary      Get a permission rule
// @Tags         permissions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Rule ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/permissions/rules/{id} [get]
func (h *PermissionHandler) GetRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Not found"))
		return
	}

	rule, err := h.adminService.GetRule(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// UpdateRule handles PATCH /api/permissions/rules/:id (admin)
// @Summary      Update a permission rule
// @Description  Partial update of the seven grant flags
// @Tags         permissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Rule ID"
// @Param        payload  body      service.UpdateRuleRequest   true  "Grant flags"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/permissions/rules/{id} [patch]
func (h *PermissionHandler) UpdateRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Not found"))
		return
	}

	var req service.UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	rule, err := h.adminService.UpdateRule(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// ListAssignments handles GET /api/permissions/user-roles (admin)
// @Summary      List role assignments
// @Tags         permissions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /api/permissions/user-roles [get]
func (h *PermissionHandler) ListAssignments(c *gin.Context) {
	assignments, err := h.adminService.ListAssignments(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, assignments))
}

// AssignRole handles POST /api/permissions/user-roles (admin). Assigning an
// already held role returns the existing assignment with 200
// @Summary      Assign a role to a user
// @Tags         permissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.AssignRoleRequest  true  "Assignment"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/permissions/user-roles [post]
func (h *PermissionHandler) AssignRole(c *gin.Context) {
	var req service.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	assignment, created, err := h.adminService.AssignRole(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		fail(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, response.Success(status, assignment))
}

// RemoveAssignment handles DELETE /api/permissions/user-roles/:id (admin)
// @Summary      Remove a role assignment
// @Tags         permissions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Assignment ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/permissions/user-roles/{id} [delete]
func (h *PermissionHandler) RemoveAssignment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Not found"))
		return
	}

	if err := h.adminService.RemoveAssignment(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Message(http.StatusOK, "Role removed from user"))
}
