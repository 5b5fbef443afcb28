package controllers

import (
	"pedeai/pkg/resp"
	"pedeai/services"
	"pedeai/utils"

	"github.com/gin-gonic/gin"
)

// Every cart route answers with the full cart so the client can adopt it
// as the authoritative state.
type CartController struct{ Svc *services.CartService }

func NewCartController(s *services.CartService) *CartController { return &CartController{Svc: s} }

// GET /cart
func (h *CartController) Get(c *gin.Context) {
	cart, err := h.Svc.Get(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, cart.View())
}

// POST /cart/items
func (h *CartController) Add(c *gin.Context) {
	var req services.AddToCartIn
	if !bindJSON(c, &req) {
		return
	}
	cart, err := h.Svc.Add(c.Request.Context(), utils.CurrentUserID(c), &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, cart.View())
}

// PUT /cart/items/:id
func (h *CartController) UpdateQuantity(c *gin.Context) {
	productID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateQuantityIn
	if !bindJSON(c, &req) {
		return
	}
	cart, err := h.Svc.UpdateQuantity(c.Request.Context(), utils.CurrentUserID(c), productID, *req.Quantity)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, cart.View())
}

// DELETE /cart/items/:id
func (h *CartController) RemoveItem(c *gin.Context) {
	productID, ok := paramID(c, "id")
	if !ok {
		return
	}
	cart, err := h.Svc.RemoveItem(c.Request.Context(), utils.CurrentUserID(c), productID)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, cart.View())
}

// DELETE /cart
func (h *CartController) Clear(c *gin.Context) {
	cart, err := h.Svc.Clear(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, cart.View())
}
