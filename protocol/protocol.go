// Package protocol 定义聊天服务端与客户端之间的 JSON 消息
// 每条消息都是一个扁平 JSON 对象，以 "type" 字段区分
package protocol

import "math"

// 服务端 -> 客户端消息类型
const (
	TypeWelcome      = "welcome"
	TypeStateSync    = "stateSync"
	TypePlayerJoined = "playerJoined"
	TypePlayerLeft   = "playerLeft"
	TypeUpdate       = "update"
	TypeBulkUpdate   = "bulkUpdate"
)

// 客户端 -> 服务端消息类型（playerJoined 两个方向共用）
const (
	TypeMove    = "move"
	TypeAnimate = "animate"
	TypeChat    = "chat"
)

// update 消息携带的数据类型
const (
	DataMove    = "move"
	DataAnimate = "animate"
	DataChat    = "chat"
)

// 服务端限制：字符串截断，超大帧直接丢弃
const (
	MaxMessageBytes = 12000
	MaxNameLen      = 20
	MaxSkinLen      = 50
	MaxChatLen      = 500
)

const (
	DefaultName = "Anonymous"
	DefaultSkin = "default"
	// 已连接但尚未发送 playerJoined 的会话显示为 Unknown
	UnknownName = "Unknown"
	// 静止时循环播放的兜底动画
	IdleAnimation = "idle"
	WalkAnimation = "walk"
)

// Position 世界坐标
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rounded 按 Round 取整
func (p Position) Rounded() Position {
	return Position{X: Round(p.X), Y: Round(p.Y)}
}

// Round 四舍五入（floor(v+0.5)），服务端与客户端统一使用，保证出生点像素一致
func Round(v float64) float64 {
	return math.Floor(v + 0.5)
}

// Truncate 按字符（rune）截断到最多 n 个
func Truncate(s string, n int) string {
	if n < 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
