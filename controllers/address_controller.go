package controllers

import (
	"pedeai/pkg/resp"
	"pedeai/services"
	"pedeai/utils"

	"github.com/gin-gonic/gin"
)

type AddressController struct{ Svc *services.AddressService }

func NewAddressController(s *services.AddressService) *AddressController {
	return &AddressController{Svc: s}
}

// GET /addresses
func (h *AddressController) List(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, list)
}

// POST /addresses
func (h *AddressController) Create(c *gin.Context) {
	var req services.AddressIn
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.Svc.Create(c.Request.Context(), utils.CurrentUserID(c), &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, a)
}

// PATCH /addresses/:id
func (h *AddressController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.AddressIn
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.Svc.Update(c.Request.Context(), utils.CurrentUserID(c), id, &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, a)
}

// DELETE /addresses/:id
func (h *AddressController) Delete(c *gin.Context) {
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
