package server

import "emotechat/protocol"

// Conn 会话的发送端抽象：生产环境为 *ClientConn，测试中为 fakeConn
type Conn interface {
	Send([]byte) error
	Close() error
}

// Session 房间内的会话实体（服务端权威状态）
type Session struct {
	ID       string
	Position protocol.Position
	Name     string
	Skin     string
	Joined   bool // 是否已收到 playerJoined

	Conn Conn
}

// Info 转为广播给客户端的玩家信息
func (s *Session) Info() protocol.PlayerInfo {
	return protocol.PlayerInfo{
		ID:   s.ID,
		X:    s.Position.X,
		Y:    s.Position.Y,
		Name: s.Name,
		Skin: s.Skin,
	}
}
