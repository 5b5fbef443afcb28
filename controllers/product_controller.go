package controllers

import (
	"strconv"

	"pedeai/pkg/resp"
	"pedeai/services"

	"github.com/gin-gonic/gin"
)

type ProductController struct{ Svc *services.ProductService }

func NewProductController(s *services.ProductService) *ProductController {
	return &ProductController{Svc: s}
}

// GET /products?q=&restaurantId=
func (h *ProductController) Search(c *gin.Context) {
	var restID uint64
	if raw := c.Query("restaurantId"); raw != "" {
		var err error
		if restID, err = strconv.ParseUint(raw, 10, 64); err != nil {
			resp.BadRequest(c, "invalid restaurantId")
			return
		}
	}
	list, err := h.Svc.Search(c.Request.Context(), c.Query("q"), uint(restID))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, list)
}

// GET /products/:id
func (h *ProductController) Detail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, p)
}

// POST /products (admin)
func (h *ProductController) Create(c *gin.Context) {
	var req services.ProductIn
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.Create(c.Request.Context(), &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, p)
}

// PATCH /products/:id (admin)
func (h *ProductController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.ProductIn
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, p)
}

// DELETE /products/:id (admin)
func (h *ProductController) Delete(c *gin.Context) {
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
