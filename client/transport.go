package client

import "errors"

var (
	ErrTransportClosed = errors.New("transport closed")
	ErrNotConnected    = errors.New("not connected")
	errSendQueueFull   = errors.New("send queue full")
)

// EventKind 传输层事件类型
type EventKind int

const (
	EventOpen EventKind = iota
	EventMessage
	EventError
	EventClose
)

func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "open"
	case EventMessage:
		return "message"
	case EventError:
		return "error"
	case EventClose:
		return "close"
	default:
		return "unknown"
	}
}

// TransportEvent 由传输层协程投递，Attempt 标识产生它的连接尝试
// 已被放弃的尝试产生的事件会被忽略
type TransportEvent struct {
	Attempt int
	Kind    EventKind
	Data    []byte
	Err     error
}

// Transport 已发起的连接；Send 只在 Open 之后有意义
type Transport interface {
	Send(b []byte) error
	Close() error
}

// Dialer 异步建立连接：立即返回 Transport，打开结果通过 events 报告
// 返回 error 表示连接无法发起（如地址非法），调用方直接换下一个候选
type Dialer interface {
	Dial(attempt int, url string, events chan<- TransportEvent) (Transport, error)
}
