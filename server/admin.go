package server

import (
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

// HandleAdminConfig 提供房间配置的读取与更新（运行时调整批量间隔）
// GET /admin/config   返回当前配置
// POST /admin/config  以 JSON 载荷更新部分字段，如 {"batchIntervalMs":50}
func HandleAdminConfig(room *Room) http.HandlerFunc {
	type cfg struct {
		BatchIntervalMs *int64 `json:"batchIntervalMs,omitempty"`
		PingIntervalMs  *int64 `json:"pingIntervalMs,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			batch := room.BatchInterval().Milliseconds()
			ping := room.PingInterval().Milliseconds()
			writeJSON(w, http.StatusOK, cfg{BatchIntervalMs: &batch, PingIntervalMs: &ping})
		case http.MethodPost:
			var body cfg
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
			if body.PingIntervalMs != nil {
				http.Error(w, "pingIntervalMs is read-only", http.StatusBadRequest)
				return
			}
			if body.BatchIntervalMs != nil {
				if err := room.SetBatchInterval(time.Duration(*body.BatchIntervalMs) * time.Millisecond); err != nil {
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			Log.Infof("config updated: batchInterval=%s", room.BatchInterval())
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleMetrics 输出房间运行指标
// GET /metrics
func HandleMetrics(room *Room) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"sessions":        room.Sessions(),
			"batchIntervalMs": room.BatchInterval().Milliseconds(),
			"metrics":         room.Metrics().Snapshot(),
		})
	}
}

// HandleHealth 健康检查
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// HandleTest 返回服务端状态，用于确认服务可达
func HandleTest(room *Room) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"message":   "Server is working!",
			"server":    "emotechat",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    room.Uptime().Seconds(),
			"sessions":  room.Sessions(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
