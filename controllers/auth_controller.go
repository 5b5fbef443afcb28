package controllers

import (
	"pedeai/pkg/resp"
	"pedeai/services"
	"pedeai/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct{ Svc *services.AuthService }

func NewAuthController(s *services.AuthService) *AuthController { return &AuthController{Svc: s} }

// POST /auth/register
func (a *AuthController) Register(c *gin.Context) {
	var req services.RegisterIn
	if !bindJSON(c, &req) {
		return
	}
	session, err := a.Svc.Register(c.Request.Context(), &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, session)
}

// POST /auth/login
func (a *AuthController) Login(c *gin.Context) {
	var req services.LoginIn
	if !bindJSON(c, &req) {
		return
	}
	session, err := a.Svc.Login(c.Request.Context(), &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, session)
}

// GET /users/me
func (a *AuthController) Me(c *gin.Context) {
	user, err := a.Svc.Me(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, user)
}

// PATCH /users/me
func (a *AuthController) UpdateMe(c *gin.Context) {
	var req services.UpdateMeIn
	if !bindJSON(c, &req) {
		return
	}
	user, err := a.Svc.UpdateMe(c.Request.Context(), utils.CurrentUserID(c), &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, user)
}

// DELETE /users/me
func (a *AuthController) DeleteMe(c *gin.Context) {
	if err := a.Svc.DeleteMe(c.Request.Context(), utils.CurrentUserID(c)); err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"deleted": true})
}
