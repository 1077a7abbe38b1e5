package server

import (
	"errors"
	"fmt"

	"emotechat/protocol"
)

var (
	errUnknownType = errors.New("unknown message type")
	errBadField    = errors.New("malformed field")
)

// roomMsg 投递到房间收件箱的消息
type roomMsg interface{ isRoomMsg() }

// connectMsg 新连接：分配会话并回复 id
type connectMsg struct {
	Conn  Conn
	Reply chan<- string
}

// joinMsg 客户端声明名字与皮肤（nil 表示缺失或类型非法）
type joinMsg struct {
	ID   string
	Name *string
	Skin *string
}

type moveMsg struct {
	ID  string
	Pos protocol.Position
}

type animateMsg struct {
	ID        string
	Animation string
}

type chatMsg struct {
	ID      string
	Message string
}

// leaveMsg 断开：读泵退出或心跳超时都走这里
type leaveMsg struct{ ID string }

// getState 测试与监控使用：在房间协程内读取状态，避免数据竞争
type getState struct{ Reply chan<- RoomView }

func (connectMsg) isRoomMsg() {}
func (joinMsg) isRoomMsg()    {}
func (moveMsg) isRoomMsg()    {}
func (animateMsg) isRoomMsg() {}
func (chatMsg) isRoomMsg()    {}
func (leaveMsg) isRoomMsg()   {}
func (getState) isRoomMsg()   {}

// parseInbound 将一帧客户端文本转换为房间消息
// 超大、非 JSON、缺少 type 或字段非法的帧返回错误，由调用方静默丢弃
func parseInbound(id string, raw []byte, limit int) (roomMsg, error) {
	in, err := protocol.DecodeInbound(raw, limit)
	if err != nil {
		return nil, err
	}

	switch in.Type {
	case protocol.TypePlayerJoined:
		m := joinMsg{ID: id}
		if name, ok := protocol.StringField(in.Name); ok {
			m.Name = &name
		}
		if skin, ok := protocol.StringField(in.Skin); ok {
			m.Skin = &skin
		}
		return m, nil
	case protocol.TypeMove:
		if in.X == nil || in.Y == nil {
			return nil, fmt.Errorf("%w: move without x/y", errBadField)
		}
		return moveMsg{ID: id, Pos: protocol.Position{X: *in.X, Y: *in.Y}}, nil
	case protocol.TypeAnimate:
		if in.Animation == nil {
			return nil, fmt.Errorf("%w: animate without animation", errBadField)
		}
		return animateMsg{ID: id, Animation: *in.Animation}, nil
	case protocol.TypeChat:
		text, _ := protocol.StringField(in.Message)
		return chatMsg{ID: id, Message: protocol.Truncate(text, protocol.MaxChatLen)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownType, in.Type)
	}
}
