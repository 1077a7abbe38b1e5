package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes 注册 WebSocket、健康检查、管理接口与静态资源
// staticDir 为空时不挂载静态资源
func SetupRoutes(room *Room, staticDir string) http.Handler {
	r := chi.NewRouter()

	r.Get("/ws", HandleWS(room))
	r.Get("/health", HandleHealth)
	r.Get("/test", HandleTest(room))

	// 管理与监控接口
	r.Get("/metrics", HandleMetrics(room))
	r.Get("/admin/config", HandleAdminConfig(room))
	r.Post("/admin/config", HandleAdminConfig(room))

	// 前后端分离：将 / 映射到静态资源目录
	if staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(staticDir)))
	}
	return r
}
