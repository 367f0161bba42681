package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plateup-dev/plateup/internal/middleware"
	"github.com/plateup-dev/plateup/internal/models"
	"github.com/plateup-dev/plateup/internal/services"
	"github.com/plateup-dev/plateup/pkg/errors"
	"github.com/plateup-dev/plateup/pkg/response"
)

// DriverOrderHandler exposes the order endpoints a driver can reach.
type DriverOrderHandler struct {
	orders *services.OrderService
}

// NewDriverOrderHandler constructs the driver order handler.
func NewDriverOrderHandler(orders *services.OrderService) *DriverOrderHandler {
	return &DriverOrderHandler{orders: orders}
}

// GET /driver/orders
func (h *DriverOrderHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	visible, err := h.orders.ListForDriver(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, errors.ErrInternalServer.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"orders": visible})
}

type transitionRequest struct {
	Status string `json:"status" validate:"required"`
}

// POST /driver/orders/:id/status
func (h *DriverOrderHandler) Transition(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req transitionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	order, err := h.orders.Transition(
		c.Request.Context(),
		c.Param("id"),
		user.ID,
		models.OrderStatus(req.Status),
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"order": order})
}
