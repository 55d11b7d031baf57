package handler

import (
	"net/http"

	"crm-backend/internal/middleware"
	"crm-backend/internal/service"
	"crm-backend/pkg/pagination"
	"crm-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type SuperAdminHandler struct {
	superAdminService service.SuperAdminService
}

// NewSuperAdminHandler sets up the routing dependencies for platform-wide management endpoints
func NewSuperAdminHandler(superAdminService service.SuperAdminService) *SuperAdminHandler {
	return &SuperAdminHandler{superAdminService: superAdminService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *SuperAdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	root := router.Group("/api/superadmin")
	root.POST("/login", h.Login)

	protected := root.Group("")
	protected.Use(middleware.RequireRole(middleware.RoleSuperAdmin))
	{
		protected.GET("/admins", h.ListAdmins)
		protected.GET("/admins/:id", h.GetAdminDetail)
		protected.DELETE("/admins/:id", h.DeleteAdmin)
		protected.GET("/customers", h.ListCustomers)
		protected.PUT("/customers/:id", h.UpdateCustomer)
		protected.DELETE("/customers/:id", h.DeleteCustomer)
	}
}

// Login handles POST /api/superadmin/login
// @Summary      Super-admin login
// @Description  Authenticates the super admin by username and password
// @Tags         superadmin
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SuperAdminLoginRequest  true  "Login credentials"
// @Success      200      {object}  response.Response{data=service.SuperAdminAuthResponse}
// @Failure      401      {object}  response.Response
// @Router       /api/superadmin/login [post]
func (h *SuperAdminHandler) Login(c *gin.Context) {
	var req service.SuperAdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	res, err := h.superAdminService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// ListAdmins handles GET /api/superadmin/admins
// @Summary      List all admins
// @Description  Lists every admin with total and current-month customer counts
// @Tags         superadmin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.AdminOverviewResponse}
// @Router       /api/superadmin/admins [get]
func (h *SuperAdminHandler) ListAdmins(c *gin.Context) {
	admins, err := h.superAdminService.ListAdmins(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, admins))
}

// GetAdminDetail handles GET /api/superadmin/admins/:id
// @Summary      Admin detail
// @Description  One admin with its customers and counts
// @Tags         superadmin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Admin ID"
// @Success      200  {object}  response.Response{data=service.AdminDetailResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/superadmin/admins/{id} [get]
func (h *SuperAdminHandler) GetAdminDetail(c *gin.Context) {
	detail, err := h.superAdminService.GetAdminDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

// DeleteAdmin handles DELETE /api/superadmin/admins/:id
// @Summary      Delete admin
// @Description  Deletes an admin and cascades to all owned customers
// @Tags         superadmin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Admin ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/superadmin/admins/{id} [delete]
func (h *SuperAdminHandler) DeleteAdmin(c *gin.Context) {
	if err := h.superAdminService.DeleteAdmin(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Message(http.StatusOK, "Admin deleted successfully"))
}

// ListCustomers handles GET /api/superadmin/customers
// @Summary      List all customers
// @Description  Paginated platform-wide customer list with owning-admin info
// @Tags         superadmin
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 50)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/superadmin/customers [get]
func (h *SuperAdminHandler) ListCustomers(c *gin.Context) {
	params := pagination.Parse(c)

	customers, total, err := h.superAdminService.ListCustomers(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"customers": customers,
		"total":     total,
		"page":      params.Page,
		"limit":     params.Limit,
	}))
}

// UpdateCustomer handles PUT /api/superadmin/customers/:id
// @Summary      Update any customer
// @Description  Partial update of any admin's customer, no ownership scoping
// @Tags         superadmin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "Customer ID"
// @Param        payload  body      service.CustomerPatch  true  "Fields to update"
// @Success      200      {object}  response.Response{data=service.CustomerResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/superadmin/customers/{id} [put]
func (h *SuperAdminHandler) UpdateCustomer(c *gin.Context) {
	var patch service.CustomerPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	customer, err := h.superAdminService.UpdateCustomer(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// DeleteCustomer handles DELETE /api/superadmin/customers/:id
// @Summary      Delete any customer
// @Description  Deletes any admin's customer, no ownership scoping
// @Tags         superadmin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/superadmin/customers/{id} [delete]
func (h *SuperAdminHandler) DeleteCustomer(c *gin.Context) {
	if err := h.superAdminService.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Message(http.StatusOK, "Customer deleted successfully"))
}
