package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialfeed/internal/api/middleware"
	"github.com/d60-Lab/socialfeed/pkg/logger"
)

// NotificationStream 通过 SSE 推送实时通知，每个连接一个会话
// @Summary 通知流 (SSE)
// @Tags 通知
// @Produce text/event-stream
// @Security BearerAuth
// @Param token query string false "EventSource 无法设置请求头时使用"
// @Success 200 {string} string "event: notification"
// @Router /api/notifications/stream [get]
func (h *Handler) NotificationStream(c *gin.Context) {
	uid := middleware.CurrentUserID(c)
	sess := h.registry.Open(uid)
	defer func() {
		h.registry.Close(sess)
		logger.Debug("notification stream closed",
			zap.String("user", uid), zap.String("session", sess.ID), zap.Int64("dropped", sess.Dropped()))
	}()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("ready", gin.H{"sessionId": sess.ID})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	ctx := c.Request.Context()
	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-sess.Done():
			return false
		case ev := <-sess.Events():
			c.SSEvent(ev.Name, ev.Payload)
			return true
		case t := <-ticker.C:
			c.SSEvent("ping", gin.H{"at": t.UTC()})
			return true
		}
	})
}
