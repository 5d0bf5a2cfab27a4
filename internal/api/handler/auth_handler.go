package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialfeed/internal/api/middleware"
	"github.com/d60-Lab/socialfeed/internal/service"
	"github.com/d60-Lab/socialfeed/pkg/response"
)

// Signup 注册
// @Summary 注册
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body service.SignupInput true "注册信息"
// @Success 201 {object} response.Response{data=service.AuthResult}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req service.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, service.ValidationMessage(err))
		return
	}
	res, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Login 登录
// @Summary 登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "登录信息"
// @Success 200 {object} response.Response{data=service.AuthResult}
// @Failure 400 {object} response.Response
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req service.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, service.ValidationMessage(err))
		return
	}
	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Me 当前用户
// @Summary 当前用户
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=model.User}
// @Failure 401 {object} response.Response
// @Router /api/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	u, err := h.authService.Me(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, u)
}
