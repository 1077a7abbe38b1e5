package protocol

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

var (
	ErrEmptyMessage    = errors.New("empty message")
	ErrMessageTooLarge = errors.New("message exceeds size limit")
	ErrMissingType     = errors.New("message has no type")
)

// Encode 编码一次，字节切片可直接扇出给所有连接
func Encode(msg any) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("encode: nil message")
	}
	return json.Marshal(msg)
}

// DecodeInbound 解析客户端帧：超过 limit 字节、非 JSON、缺少 type 的帧返回错误
// limit <= 0 时不检查大小
func DecodeInbound(b []byte, limit int) (Inbound, error) {
	if len(b) == 0 {
		return Inbound{}, ErrEmptyMessage
	}
	if limit > 0 && len(b) > limit {
		return Inbound{}, fmt.Errorf("%w: %d > %d bytes", ErrMessageTooLarge, len(b), limit)
	}
	var in Inbound
	if err := json.Unmarshal(b, &in); err != nil {
		return Inbound{}, fmt.Errorf("decode inbound: %w", err)
	}
	if in.Type == "" {
		return Inbound{}, ErrMissingType
	}
	return in, nil
}

// DecodeServer 客户端解析服务端帧
func DecodeServer(b []byte) (ServerMessage, error) {
	if len(b) == 0 {
		return ServerMessage{}, ErrEmptyMessage
	}
	var msg ServerMessage
	if err := json.Unmarshal(b, &msg); err != nil {
		return ServerMessage{}, fmt.Errorf("decode server message: %w", err)
	}
	if msg.Type == "" {
		return ServerMessage{}, ErrMissingType
	}
	return msg, nil
}

// StringField 原始 JSON 值为字符串时返回该字符串，缺失或其他类型返回 false
func StringField(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
