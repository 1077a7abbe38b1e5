package client

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

const (
	wsSendQueue = 64
	wsReadLimit = 1 << 20
	wsWriteWait = 5 * time.Second
)

// WSDialer 基于 nhooyr.io/websocket 的 Dialer
type WSDialer struct {
	// ReadLimit 单帧读取上限，0 使用 1MB
	ReadLimit int64
}

// Dial 校验地址后在后台协程中握手；握手结果与后续帧都通过 events 报告
func (d WSDialer) Dial(attempt int, rawURL string, events chan<- TransportEvent) (Transport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss", "http", "https":
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	limit := d.ReadLimit
	if limit <= 0 {
		limit = wsReadLimit
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &wsTransport{
		attempt: attempt,
		events:  events,
		send:    make(chan []byte, wsSendQueue),
		done:    make(chan struct{}),
		cancel:  cancel,
	}
	go t.run(ctx, rawURL, limit)
	return t, nil
}

type wsTransport struct {
	attempt int
	events  chan<- TransportEvent
	send    chan []byte
	done    chan struct{}
	cancel  context.CancelFunc
	once    sync.Once
}

func (t *wsTransport) run(ctx context.Context, rawURL string, limit int64) {
	conn, _, err := websocket.Dial(ctx, rawURL, nil)
	if err != nil {
		t.post(TransportEvent{Kind: EventError, Err: err})
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	conn.SetReadLimit(limit)
	t.post(TransportEvent{Kind: EventOpen})

	go t.writeLoop(ctx, conn)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.post(TransportEvent{Kind: EventClose, Err: err})
			return
		}
		t.post(TransportEvent{Kind: EventMessage, Data: data})
	}
}

func (t *wsTransport) writeLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case b := <-t.send:
			wctx, cancel := context.WithTimeout(ctx, wsWriteWait)
			err := conn.Write(wctx, websocket.MessageText, b)
			cancel()
			if err != nil {
				t.post(TransportEvent{Kind: EventError, Err: err})
				return
			}
		}
	}
}

// post 关闭后不再阻塞
func (t *wsTransport) post(ev TransportEvent) {
	ev.Attempt = t.attempt
	select {
	case t.events <- ev:
	case <-t.done:
	}
}

func (t *wsTransport) Send(b []byte) error {
	select {
	case <-t.done:
		return ErrTransportClosed
	default:
	}
	select {
	case t.send <- b:
		return nil
	default:
		return errSendQueueFull
	}
}

func (t *wsTransport) Close() error {
	t.once.Do(func() {
		close(t.done)
		t.cancel()
	})
	return nil
}
