package controllers

import (
	"pedeai/pkg/resp"
	"pedeai/services"
	"pedeai/utils"

	"github.com/gin-gonic/gin"
)

type PaymentController struct{ Svc *services.PaymentService }

func NewPaymentController(s *services.PaymentService) *PaymentController {
	return &PaymentController{Svc: s}
}

// GET /payments
func (h *PaymentController) List(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, list)
}

// POST /payments
func (h *PaymentController) Create(c *gin.Context) {
	var req services.PaymentIn
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.Create(c.Request.Context(), utils.CurrentUserID(c), &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, p)
}

// PATCH /payments/:id
func (h *PaymentController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.PaymentUpdateIn
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), utils.CurrentUserID(c), id, &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, p)
}

// DELETE /payments/:id
func (h *PaymentController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), utils.CurrentUserID(c), id); err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"deleted": id})
}
