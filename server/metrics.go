package server

import (
	"sync/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	SessionsOpened  int64 // 建立的会话数
	SessionsClosed  int64 // 清理的会话数
	MovesAccepted   int64 // 被接受的 move 数
	Relayed         int64 // 立即转发的 animate/chat 数
	Oversized       int64 // 超过大小上限被丢弃的帧
	Malformed       int64 // 非 JSON / 缺少 type / 字段非法被丢弃的帧
	UnknownType     int64 // 未知类型被忽略的帧
	SendDropped     int64 // 发送队列满或已关闭而丢弃的消息
	FlushCount      int64 // 发出的 bulkUpdate 次数
	FlushRecords    int64 // bulkUpdate 中累计的位置记录数
	IdleTransitions int64 // 定时器触发时集合为空、调度器转为空闲的次数
	TotalFlushNs    int64 // 批量广播累计耗时（纳秒）
}

func (m *RoomMetrics) IncOpened()      { atomic.AddInt64(&m.SessionsOpened, 1) }
func (m *RoomMetrics) IncClosed()      { atomic.AddInt64(&m.SessionsClosed, 1) }
func (m *RoomMetrics) IncMoves()       { atomic.AddInt64(&m.MovesAccepted, 1) }
func (m *RoomMetrics) IncRelayed()     { atomic.AddInt64(&m.Relayed, 1) }
func (m *RoomMetrics) IncOversized()   { atomic.AddInt64(&m.Oversized, 1) }
func (m *RoomMetrics) IncMalformed()   { atomic.AddInt64(&m.Malformed, 1) }
func (m *RoomMetrics) IncUnknownType() { atomic.AddInt64(&m.UnknownType, 1) }
func (m *RoomMetrics) IncSendDropped() { atomic.AddInt64(&m.SendDropped, 1) }
func (m *RoomMetrics) IncIdle()        { atomic.AddInt64(&m.IdleTransitions, 1) }
func (m *RoomMetrics) AddFlush(records int, ns int64) {
	atomic.AddInt64(&m.FlushCount, 1)
	atomic.AddInt64(&m.FlushRecords, int64(records))
	atomic.AddInt64(&m.TotalFlushNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	flushes := atomic.LoadInt64(&m.FlushCount)
	total := atomic.LoadInt64(&m.TotalFlushNs)
	var avgMs float64
	if flushes > 0 {
		avgMs = float64(total) / float64(flushes) / 1e6
	}
	return map[string]any{
		"sessions_opened":  atomic.LoadInt64(&m.SessionsOpened),
		"sessions_closed":  atomic.LoadInt64(&m.SessionsClosed),
		"moves_accepted":   atomic.LoadInt64(&m.MovesAccepted),
		"relayed":          atomic.LoadInt64(&m.Relayed),
		"oversized":        atomic.LoadInt64(&m.Oversized),
		"malformed":        atomic.LoadInt64(&m.Malformed),
		"unknown_type":     atomic.LoadInt64(&m.UnknownType),
		"send_dropped":     atomic.LoadInt64(&m.SendDropped),
		"flush_count":      flushes,
		"flush_records":    atomic.LoadInt64(&m.FlushRecords),
		"idle_transitions": atomic.LoadInt64(&m.IdleTransitions),
		"avg_flush_ms":     avgMs,
	}
}
