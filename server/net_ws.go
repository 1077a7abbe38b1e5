package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrClosed         = errors.New("connection closed")
	errSendQueueFull  = errors.New("send queue full")
	writeWait         = 5 * time.Second
	maxFrameReadLimit = int64(1 << 20) // 1MB；业务上限（12000 字节）在解码时检查，超限只丢帧不断开
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool

	alive atomic.Bool // 上一次 ping 之后是否收到 pong
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	c := &ClientConn{
		ws:   ws,
		send: make(chan []byte, 64),
	}
	c.alive.Store(true)
	return c
}

// Send 将消息压入发送队列（非阻塞，满则丢弃）
func (c *ClientConn) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- b:
		return nil
	default:
		// 为了实时性，丢弃新消息（防止阻塞房间协程）
		return errSendQueueFull
	}
}

// Close 关闭发送队列，写协程发送关闭帧后断开底层连接；可重复调用
func (c *ClientConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.send)
	return nil
}

// writePump 独立协程：从 send 队列写出到 WS，并按 pingInterval 发送心跳
// 若上一次 ping 之后没有收到 pong，直接终止连接，读泵随之退出并走离开流程
func (c *ClientConn) writePump(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if !c.alive.Swap(false) {
				Log.Infof("terminate unresponsive connection: %s", c.ws.RemoteAddr())
				return
			}
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端消息并交给房间；退出时通知房间移除会话
func (c *ClientConn) readPump(room *Room, id string) {
	defer func() { _ = c.ws.Close() }()
	defer room.Leave(id)

	c.ws.SetReadLimit(maxFrameReadLimit)
	c.ws.SetPongHandler(func(string) error {
		c.alive.Store(true)
		return nil
	})

	for {
		kind, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				Log.Debugf("read error: id=%s err=%v", id, err)
			}
			return
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}
		room.HandleFrame(id, payload)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// HandleWS WebSocket 接入：升级后立即分配会话，发送 welcome 与 stateSync
func HandleWS(room *Room) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			Log.Warnf("upgrade error: %v", err)
			return
		}

		client := NewClientConn(ws)
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		id, err := room.Connect(ctx, client)
		cancel()
		if err != nil {
			Log.Warnf("connect %s: %v", ws.RemoteAddr(), err)
			_ = ws.Close()
			return
		}

		go client.writePump(room.PingInterval())
		go client.readPump(room, id)
	}
}
