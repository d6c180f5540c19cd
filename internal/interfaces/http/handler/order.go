package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/marvelstore/backend/internal/application/trade"
	"github.com/marvelstore/backend/internal/interfaces/http/dto"
	"github.com/marvelstore/backend/internal/interfaces/http/middleware"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	BaseHandler
	orderService *tradeapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *tradeapp.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create handles POST /api/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err, dto.ErrCodeValidation, "Invalid request body")
		return
	}
	input, err := req.toRequest()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), sessionUserID(c), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Get handles GET /api/orders/:id. Owners and admins only.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, order)
}

// MyOrders handles GET /api/orders/myorders
func (h *OrderHandler) MyOrders(c *gin.Context) {
	orders, err := h.orderService.MyOrders(c.Request.Context(), sessionUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, orders)
}

// List handles GET /api/orders (admin)
func (h *OrderHandler) List(c *gin.Context) {
	var query ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err, dto.ErrCodeInvalidQuery, "Invalid query parameters")
		return
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), tradeapp.ListOrdersRequest{
		Status: query.Status,
		Page:   query.Page,
		Limit:  query.Limit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, result)
}

// Pay handles PUT /api/orders/:id/pay
func (h *OrderHandler) Pay(c *gin.Context) {
	id, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}
	var req PayOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err, dto.ErrCodeValidation, "Invalid request body")
		return
	}

	order, err := h.orderService.PayOrder(c.Request.Context(), actor(c), id, tradeapp.PayOrderRequest{
		ID:           req.ID,
		Status:       req.Status,
		UpdateTime:   req.UpdateTime,
		EmailAddress: req.EmailAddress,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, order)
}

// UpdateStatus handles PUT /api/orders/:id/status (admin)
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err, dto.ErrCodeValidation, "Invalid request body")
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, order)
}

// Stats handles GET /api/orders/stats (admin)
func (h *OrderHandler) Stats(c *gin.Context) {
	stats, err := h.orderService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, stats)
}

func actor(c *gin.Context) tradeapp.Actor {
	user := middleware.CurrentUser(c)
	if user == nil {
		return tradeapp.Actor{}
	}
	return tradeapp.Actor{UserID: user.ID, IsAdmin: user.IsAdmin()}
}
