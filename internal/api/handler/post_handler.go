package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialfeed/internal/api/middleware"
	"github.com/d60-Lab/socialfeed/internal/service"
	"github.com/d60-Lab/socialfeed/pkg/response"
)

type commentRequest struct {
	Text string `json:"text" binding:"required"`
}

type repostRequest struct {
	Text string `json:"text"`
}

// CreatePost 发帖，媒体文件字段为 media，最多 6 个
// @Summary 发帖
// @Tags 帖子
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param text formData string false "正文"
// @Param tags formData string false "标签，逗号分隔或 JSON 数组"
// @Param visibility formData string false "public/followers/private"
// @Param media formData file false "图片或视频"
// @Success 201 {object} response.Response{data=model.Post}
// @Failure 400 {object} response.Response
// @Router /api/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	maxBody := int64(h.limits.MaxPostFiles)*h.limits.MaxFileSize + 1<<20
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)

	var req service.CreatePostInput
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, bindMessage(err))
		return
	}
	var files []service.Upload
	if form, err := c.MultipartForm(); err == nil {
		for _, fh := range form.File["media"] {
			files = append(files, toUpload(fh))
		}
	} else if !errors.Is(err, http.ErrNotMultipart) {
		response.BadRequest(c, bindMessage(err))
		return
	}

	p, err := h.postService.Create(c.Request.Context(), middleware.CurrentUserID(c), req, files)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, p)
}

// GetFeed 关注者与自己的公开帖子
// @Summary 关注流
// @Tags 帖子
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=service.PostPage}
// @Router /api/posts/feed [get]
func (h *Handler) GetFeed(c *gin.Context) {
	page, limit := pageParams(c)
	res, err := h.feedService.Feed(c.Request.Context(), middleware.CurrentUserID(c), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Explore 公开帖子，tag 精确匹配，q 匹配正文或标签
// @Summary 发现
// @Tags 帖子
// @Param q query string false "关键字"
// @Param tag query string false "标签"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=service.PostPage}
// @Router /api/posts/explore [get]
func (h *Handler) Explore(c *gin.Context) {
	page, limit := pageParams(c)
	res, err := h.feedService.Explore(c.Request.Context(), c.Query("q"), c.Query("tag"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// ListUserPosts 某用户的公开帖子
// @Summary 用户帖子
// @Tags 帖子
// @Param userId path string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=service.UserPostPage}
// @Router /api/posts/user/{userId} [get]
func (h *Handler) ListUserPosts(c *gin.Context) {
	page, limit := pageParams(c)
	res, err := h.postService.ListByUser(c.Request.Context(), c.Param("userId"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetPost 帖子详情（含评论）
// @Summary 帖子详情
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response{data=model.Post}
// @Failure 404 {object} response.Response
// @Router /api/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	p, err := h.postService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, p)
}

// DeletePost 删除帖子，仅作者或管理员
// @Summary 删除帖子
// @Tags 帖子
// @Security BearerAuth
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.postService.Delete(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": c.Param("id")})
}

// ToggleLike 点赞/取消点赞
// @Summary 点赞切换
// @Tags 互动
// @Security BearerAuth
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response{data=service.LikeResult}
// @Failure 404 {object} response.Response
// @Router /api/posts/{id}/like [post]
func (h *Handler) ToggleLike(c *gin.Context) {
	res, err := h.engageService.ToggleLike(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// AddComment 评论
// @Summary 评论
// @Tags 互动
// @Accept json
// @Security BearerAuth
// @Param id path string true "帖子ID"
// @Param request body commentRequest true "评论内容"
// @Success 201 {object} response.Response{data=model.Comment}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/posts/{id}/comment [post]
func (h *Handler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "comment text is required")
		return
	}
	cm, err := h.engageService.AddComment(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cm)
}

// Repost 转发
// @Summary 转发
// @Tags 互动
// @Accept json
// @Security BearerAuth
// @Param id path string true "帖子ID"
// @Param request body repostRequest false "附言"
// @Success 201 {object} response.Response{data=model.Post}
// @Failure 404 {object} response.Response
// @Router /api/posts/{id}/repost [post]
func (h *Handler) Repost(c *gin.Context) {
	var req repostRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request body")
			return
		}
	}
	p, err := h.postService.Repost(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, p)
}
