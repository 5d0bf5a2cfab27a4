package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialfeed/internal/api/middleware"
	"github.com/d60-Lab/socialfeed/internal/service"
	"github.com/d60-Lab/socialfeed/pkg/response"
)

// SearchUsers 按用户名或昵称搜索
// @Summary 搜索用户
// @Tags 用户
// @Param q query string false "关键字"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=service.UserPage}
// @Router /api/users [get]
func (h *Handler) SearchUsers(c *gin.Context) {
	page, limit := pageParams(c)
	res, err := h.userService.Search(c.Request.Context(), c.Query("q"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetProfile 用户主页
// @Summary 用户主页
// @Tags 用户
// @Param username path string true "用户名"
// @Success 200 {object} response.Response{data=service.UserProfile}
// @Failure 404 {object} response.Response
// @Router /api/users/{username} [get]
func (h *Handler) GetProfile(c *gin.Context) {
	res, err := h.userService.Profile(c.Request.Context(), c.Param("username"), middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// UpdateProfile 更新资料，可附带头像
// @Summary 更新资料
// @Tags 用户
// @Accept multipart/form-data
// @Security BearerAuth
// @Param name formData string false "昵称"
// @Param bio formData string false "简介"
// @Param city formData string false "城市"
// @Param country formData string false "国家"
// @Param avatar formData file false "头像"
// @Success 200 {object} response.Response{data=model.User}
// @Failure 400 {object} response.Response
// @Router /api/users [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.limits.MaxAvatarSize+1<<20)

	var req service.UpdateProfileInput
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, bindMessage(err))
		return
	}
	var avatar *service.Upload
	if fh, err := c.FormFile("avatar"); err == nil {
		up := toUpload(fh)
		avatar = &up
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		response.BadRequest(c, bindMessage(err))
		return
	}

	u, err := h.userService.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), req, avatar)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, u)
}

func bindMessage(err error) string {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return "request body too large"
	}
	return service.ValidationMessage(err)
}
