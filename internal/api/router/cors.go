package router

import (
	"net/http"

	"github.com/gorilla/handlers"
)

// WithCORS 在 gin 之外处理跨域，预检请求不进入路由
func WithCORS(next http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return next
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
		handlers.MaxAge(300),
	)(next)
}
