// Package middleware holds the gin middleware shared by every route.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialfeed/internal/model"
	"github.com/d60-Lab/socialfeed/internal/service"
	"github.com/d60-Lab/socialfeed/pkg/response"
)

const currentUserKey = "currentUser"

// bearerToken 优先取 Authorization 头，其次取 ?token=（EventSource 无法设置请求头）
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
		return ""
	}
	return c.Query("token")
}

// Auth 要求有效令牌且用户仍然存在
func Auth(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearerToken(c)
		if tok == "" {
			response.Unauthorized(c, "authentication required")
			return
		}
		u, err := auth.Authenticate(c.Request.Context(), tok)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Set(currentUserKey, u)
		c.Next()
	}
}

// OptionalAuth 有令牌时解析用户，无效令牌按匿名处理
func OptionalAuth(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := bearerToken(c); tok != "" {
			if u, err := auth.Authenticate(c.Request.Context(), tok); err == nil {
				c.Set(currentUserKey, u)
			}
		}
		c.Next()
	}
}

// CurrentUser 返回当前登录用户，未登录时为 nil
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}

func CurrentUserID(c *gin.Context) string {
	if u := CurrentUser(c); u != nil {
		return u.ID
	}
	return ""
}
