package controllers

import (
	"pedeai/pkg/resp"
	"pedeai/services"

	"github.com/gin-gonic/gin"
)

type RestaurantController struct{ Svc *services.RestaurantService }

func NewRestaurantController(s *services.RestaurantService) *RestaurantController {
	return &RestaurantController{Svc: s}
}

// GET /restaurants?q=
func (h *RestaurantController) List(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, list)
}

// GET /restaurants/:id
func (h *RestaurantController) Detail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	rest, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, rest)
}

// GET /restaurants/:id/products
func (h *RestaurantController) Products(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	list, err := h.Svc.Menu(c.Request.Context(), id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, list)
}

// POST /restaurants (admin)
func (h *RestaurantController) Create(c *gin.Context) {
	var req services.RestaurantIn
	if !bindJSON(c, &req) {
		return
	}
	rest, err := h.Svc.Create(c.Request.Context(), &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, rest)
}

// PATCH /restaurants/:id (admin)
func (h *RestaurantController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.RestaurantIn
	if !bindJSON(c, &req) {
		return
	}
	rest, err := h.Svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, rest)
}

// DELETE /restaurants/:id (admin)
func (h *RestaurantController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"deleted": id})
}
