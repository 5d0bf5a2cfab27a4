package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialfeed/internal/api/middleware"
	"github.com/d60-Lab/socialfeed/pkg/response"
)

// Follow 关注用户（关注表与粉丝表同一事务写入，重复关注不报错）
// @Summary 关注用户
// @Tags 关系链
// @Produce json
// @Security BearerAuth
// @Param username path string true "用户名"
// @Success 200 {object} response.Response{data=service.FollowResult}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/users/{username}/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	res, err := h.relService.Follow(c.Request.Context(), middleware.CurrentUserID(c), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Unfollow 取消关注
// @Summary 取消关注
// @Tags 关系链
// @Produce json
// @Security BearerAuth
// @Param username path string true "用户名"
// @Success 200 {object} response.Response{data=service.FollowResult}
// @Failure 404 {object} response.Response
// @Router /api/users/{username}/unfollow [post]
func (h *Handler) Unfollow(c *gin.Context) {
	res, err := h.relService.Unfollow(c.Request.Context(), middleware.CurrentUserID(c), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// ListFollowing 查询某用户关注的人
// @Summary 查询关注列表
// @Tags 关系链
// @Param username path string true "用户名"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=service.UserPage}
// @Router /api/users/{username}/following [get]
func (h *Handler) ListFollowing(c *gin.Context) {
	page, limit := pageParams(c)
	res, err := h.userService.Following(c.Request.Context(), c.Param("username"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// ListFollowers 查询某用户的粉丝
// @Summary 查询粉丝列表
// @Tags 关系链
// @Param username path string true "用户名"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=service.UserPage}
// @Router /api/users/{username}/followers [get]
func (h *Handler) ListFollowers(c *gin.Context) {
	page, limit := pageParams(c)
	res, err := h.userService.Followers(c.Request.Context(), c.Param("username"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
