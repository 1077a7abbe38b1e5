// Package motion 参与者的移动与动画状态机，本地输入与远端更新共用同一套规则
package motion

import "time"

// State 动画状态
type State int

const (
	StateIdle State = iota
	StateWalking
	StateEmoting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWalking:
		return "walking"
	case StateEmoting:
		return "emoting"
	default:
		return "unknown"
	}
}

const (
	// SpawnGrace 新建参与者的保护期，期间不做状态切换
	SpawnGrace = 100 * time.Millisecond
	// StopThreshold 远端超过该时长没有位移即视为停止
	StopThreshold = 250 * time.Millisecond
	// MoveEpsilon 远端位移超过该值才刷新最近移动时间
	MoveEpsilon = 1.0
	// DefaultEmoteDuration 目录中没有时长的动画按 1 秒处理
	DefaultEmoteDuration = time.Second
	// LocalSpeed 本地移动速度（单位/秒）
	LocalSpeed = 200.0
	// SendInterval 本地 move 消息的最小间隔
	SendInterval = 200 * time.Millisecond
	// ChatBubbleTTL 聊天气泡显示时长
	ChatBubbleTTL = 4 * time.Second

	// 本地位置的边界留白
	EdgeMarginX = 16.0
	EdgeMarginY = 24.0
)
