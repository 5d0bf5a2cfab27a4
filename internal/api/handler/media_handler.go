package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialfeed/internal/media"
	"github.com/d60-Lab/socialfeed/pkg/response"
)

// ServeMedia 从 GridFS 读取媒体
// @Summary 读取媒体
// @Tags 媒体
// @Param id path string true "对象ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Response
// @Router /media/{id} [get]
func (h *Handler) ServeMedia(c *gin.Context) {
	if h.opener == nil {
		response.NotFound(c, "media not found")
		return
	}
	rc, contentType, err := h.opener.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			response.NotFound(c, "media not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	defer rc.Close()
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}
