package handler

import (
	"net/http"

	"crm-backend/internal/middleware"
	"crm-backend/internal/service"
	"crm-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	customerService service.CustomerService
}

// NewCustomerHandler sets up the routing dependencies for the admin-scoped customer ledger
func NewCustomerHandler(customerService service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *CustomerHandler) RegisterRoutes(router *gin.RouterGroup) {
	customers := router.Group("/api/customers")
	customers.Use(middleware.RequireRole(middleware.RoleAdmin))
	{
		customers.POST("", h.CheckIn)
		customers.GET("", h.List)
		customers.GET("/stats", h.Stats)
		customers.GET("/:id", h.Get)
		customers.PUT("/:id", h.Update)
		customers.DELETE("/:id", h.Delete)
	}
}

// CheckIn handles POST /api/customers
// @Summary      Check in a customer
// @Description  Creates the customer on first visit, otherwise increments the visit count and refreshes the location. Visit counts above 4 trigger an SMS alert to the admin.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CheckInRequest  true  "Check-in payload"
// @Success      200      {object}  response.Response{data=service.CheckInResponse}
// @Success      201      {object}  response.Response{data=service.CheckInResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/customers [post]
func (h *CustomerHandler) CheckIn(c *gin.Context) {
	var req service.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	res, err := h.customerService.CheckIn(c.Request.Context(), c.GetString("adminID"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, response.Success(status, res))
}

// List handles GET /api/customers
// @Summary      List own customers
// @Description  Lists the admin's customers ordered by visit count, then recency
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.CustomerResponse}
// @Router       /api/customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	customers, err := h.customerService.ListForAdmin(c.Request.Context(), c.GetString("adminID"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, customers))
}

// Stats handles GET /api/customers/stats
// @Summary      Customer stats
// @Description  Total customer count and count created in the current calendar month
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.StatsResponse}
// @Router       /api/customers/stats [get]
func (h *CustomerHandler) Stats(c *gin.Context) {
	stats, err := h.customerService.StatsForAdmin(c.Request.Context(), c.GetString("adminID"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// Get handles GET /api/customers/:id
// @Summary      Get customer
// @Description  Fetches one of the admin's own customers by id
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  response.Response{data=service.CustomerResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/customers/{id} [get]
func (h *CustomerHandler) Get(c *gin.Context) {
	customer, err := h.customerService.GetForAdmin(c.Request.Context(), c.Param("id"), c.GetString("adminID"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// Update handles PUT /api/customers/:id
// @Summary      Update customer
// @Description  Partially updates name, phone number or location. Visit count is never editable.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "Customer ID"
// @Param        payload  body      service.CustomerPatch  true  "Fields to update"
// @Success      200      {object}  response.Response{data=service.CustomerResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	var patch service.CustomerPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	customer, err := h.customerService.UpdateForAdmin(c.Request.Context(), c.Param("id"), c.GetString("adminID"), patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// Delete handles DELETE /api/customers/:id
// @Summary      Delete customer
// @Description  Deletes one of the admin's own customers
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	if err := h.customerService.DeleteForAdmin(c.Request.Context(), c.Param("id"), c.GetString("adminID")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Message(http.StatusOK, "Customer deleted successfully"))
}
