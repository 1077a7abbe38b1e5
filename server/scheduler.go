package server

import (
	"time"

	"emotechat/protocol"
)

// DefaultBatchInterval 位置批量广播间隔（约 10Hz）
const DefaultBatchInterval = 100 * time.Millisecond

// Scheduler 待发送的位置集合：每个会话只保留最新一条，按首次写入顺序输出
// 定时器本身由房间持有，Scheduler 只负责告诉房间何时需要启动定时器
type Scheduler struct {
	order   []string
	pending map[string]protocol.Position
	armed   bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{pending: make(map[string]protocol.Position)}
}

// Record 覆盖会话的待发送位置；返回 true 表示调度器原本空闲，需要启动定时器
func (s *Scheduler) Record(id string, pos protocol.Position) bool {
	if _, ok := s.pending[id]; !ok {
		s.order = append(s.order, id)
	}
	s.pending[id] = pos
	if s.armed {
		return false
	}
	s.armed = true
	return true
}

// Drain 取出全部待发送位置（坐标取整）并清空集合
// 集合为空时调度器转为空闲并返回 nil；非空时保持启动状态，由调用方重新计时
func (s *Scheduler) Drain() []protocol.PositionUpdate {
	if len(s.order) == 0 {
		s.armed = false
		return nil
	}
	updates := make([]protocol.PositionUpdate, 0, len(s.order))
	for _, id := range s.order {
		p := s.pending[id].Rounded()
		updates = append(updates, protocol.PositionUpdate{ID: id, X: p.X, Y: p.Y})
	}
	s.order = s.order[:0]
	clear(s.pending)
	return updates
}

// Discard 丢弃会话的待发送位置（会话离开时调用）
func (s *Scheduler) Discard(id string) {
	if _, ok := s.pending[id]; !ok {
		return
	}
	delete(s.pending, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// Idle 是否没有挂起的定时器
func (s *Scheduler) Idle() bool { return !s.armed }

func (s *Scheduler) Len() int { return len(s.order) }
