package controllers

import (
	"strconv"

	"pedeai/entity"
	"pedeai/pkg/resp"
	"pedeai/services"
	"pedeai/utils"

	"github.com/gin-gonic/gin"
)

type OrderController struct{ Svc *services.OrderService }

func NewOrderController(s *services.OrderService) *OrderController { return &OrderController{Svc: s} }

// POST /orders
func (h *OrderController) Create(c *gin.Context) {
	var req services.CheckoutIn
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.Svc.Checkout(c.Request.Context(), utils.CurrentUserID(c), &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, order)
}

// GET /orders/my?status=&limit=
func (h *OrderController) ListMine(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	orders, err := h.Svc.ListForUser(c.Request.Context(), utils.CurrentUserID(c), c.Query("status"), limit)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, orders)
}

// GET /orders/my/stats
func (h *OrderController) Stats(c *gin.Context) {
	stats, err := h.Svc.Stats(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, stats)
}

// GET /orders/:id
func (h *OrderController) Detail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.Svc.Get(c.Request.Context(), utils.CurrentUserID(c), utils.CurrentRole(c), id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, order)
}

type statusRequest struct {
	// Empty means the next status on the delivery path.
	Status entity.OrderStatus `json:"status"`
}

// PATCH /orders/:id/status (admin)
func (h *OrderController) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	var (
		order *entity.Order
		err   error
	)
	if req.Status == "" {
		order, err = h.Svc.Advance(c.Request.Context(), id)
	} else {
		order, err = h.Svc.Transition(c.Request.Context(), id, req.Status)
	}
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, order)
}

// POST /orders/:id/cancel
func (h *OrderController) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.Svc.Cancel(c.Request.Context(), utils.CurrentUserID(c), utils.CurrentRole(c), id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, order)
}
