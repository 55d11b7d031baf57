package handler

import (
	"net/http"

	"crm-backend/internal/middleware"
	"crm-backend/internal/service"
	"crm-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	authService service.AuthService
}

// NewAdminHandler sets up the routing dependencies for admin self-service endpoints
func NewAdminHandler(authService service.AuthService) *AdminHandler {
	return &AdminHandler{authService: authService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.RequireRole(middleware.RoleAdmin))
	{
		admin.GET("/profile", h.GetProfile)
	}
}

// GetProfile handles GET /api/admin/profile
// @Summary      Get admin profile
// @Description  Returns the authenticated admin's public profile
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.AdminResponse}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/admin/profile [get]
func (h *AdminHandler) GetProfile(c *gin.Context) {
	adminID := c.GetString("adminID")
	if adminID == "" {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Admin ID not found in context"))
		return
	}

	admin, err := h.authService.GetProfile(c.Request.Context(), adminID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, admin))
}
