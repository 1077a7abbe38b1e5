package client

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultConnectTimeout 每个候选地址的打开期限
const DefaultConnectTimeout = 5 * time.Second

const eventBuffer = 256

// ChainState 连接链状态
type ChainState int

const (
	ChainIdle ChainState = iota
	ChainConnecting
	ChainOpen
	ChainOffline
)

func (s ChainState) String() string {
	switch s {
	case ChainIdle:
		return "idle"
	case ChainConnecting:
		return "connecting"
	case ChainOpen:
		return "open"
	case ChainOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// ChainHandler 接收连接链的结果，在 Update 所在协程中回调
type ChainHandler interface {
	OnOpen(url string)
	OnMessage(data []byte)
	// OnOffline 候选耗尽或已建立的连接断开；reason 汇总了失败原因
	OnOffline(reason error)
}

// Chain 按顺序尝试候选地址，第一个在期限内打开的连接被采用
// 全部失败进入 Offline，之后不再重连
// 期限在 Update 中顺带检查，不单独起定时器
type Chain struct {
	endpoints []string
	timeout   time.Duration
	dialer    Dialer
	handler   ChainHandler
	log       *zap.Logger

	events chan TransportEvent

	state     ChainState
	index     int // 当前候选下标
	attempt   int // 递增的尝试编号
	transport Transport
	deadline  time.Time
	failures  error
}

// ChainOptions 连接链参数
type ChainOptions struct {
	Timeout time.Duration
	Logger  *zap.Logger
}

func NewChain(endpoints []string, dialer Dialer, handler ChainHandler, opts ChainOptions) *Chain {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultConnectTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Chain{
		endpoints: append([]string(nil), endpoints...),
		timeout:   opts.Timeout,
		dialer:    dialer,
		handler:   handler,
		log:       opts.Logger,
		events:    make(chan TransportEvent, eventBuffer),
		index:     -1,
	}
}

func (c *Chain) State() ChainState { return c.state }

// URL 当前尝试或已采用的地址
func (c *Chain) URL() string {
	if c.index < 0 || c.index >= len(c.endpoints) {
		return ""
	}
	return c.endpoints[c.index]
}

// Start 从第一个候选开始尝试；只在 Idle 时生效
func (c *Chain) Start(now time.Time) {
	if c.state != ChainIdle {
		return
	}
	c.advance(now)
}

// Update 处理已到达的传输事件并检查当前尝试是否超时
func (c *Chain) Update(now time.Time) {
	for drained := false; !drained; {
		select {
		case ev := <-c.events:
			c.handle(ev, now)
		default:
			drained = true
		}
	}
	if c.state == ChainConnecting && !now.Before(c.deadline) {
		c.fail(fmt.Errorf("%s: connect timeout after %s", c.URL(), c.timeout), now)
	}
}

// Send 只在连接已打开时发送
func (c *Chain) Send(b []byte) error {
	if c.state != ChainOpen {
		return ErrNotConnected
	}
	return c.transport.Send(b)
}

// Close 关闭当前连接并进入 Offline，不回调 handler
func (c *Chain) Close() error {
	c.state = ChainOffline
	return c.discard()
}

func (c *Chain) handle(ev TransportEvent, now time.Time) {
	if ev.Attempt != c.attempt {
		c.log.Debug("stale transport event ignored",
			zap.Int("attempt", ev.Attempt), zap.Stringer("kind", ev.Kind))
		return
	}
	switch c.state {
	case ChainConnecting:
		switch ev.Kind {
		case EventOpen:
			c.state = ChainOpen
			c.log.Info("connected", zap.String("url", c.URL()))
			c.handler.OnOpen(c.URL())
		case EventMessage:
			// 打开之前不会有消息
		case EventError, EventClose:
			err := ev.Err
			if err == nil {
				err = fmt.Errorf("connection %s before open", ev.Kind)
			}
			c.fail(fmt.Errorf("%s: %w", c.URL(), err), now)
		}
	case ChainOpen:
		switch ev.Kind {
		case EventMessage:
			c.handler.OnMessage(ev.Data)
		case EventError, EventClose:
			c.log.Warn("connection lost", zap.String("url", c.URL()), zap.Error(ev.Err))
			_ = c.discard()
			c.state = ChainOffline
			c.handler.OnOffline(ev.Err)
		}
	}
}

// fail 放弃当前尝试并前进到下一个候选
func (c *Chain) fail(err error, now time.Time) {
	c.log.Warn("connect attempt failed", zap.Error(err))
	c.failures = multierr.Append(c.failures, err)
	_ = c.discard()
	c.advance(now)
}

func (c *Chain) advance(now time.Time) {
	for {
		c.index++
		if c.index >= len(c.endpoints) {
			c.state = ChainOffline
			c.log.Warn("all endpoints failed, going offline",
				zap.Int("endpoints", len(c.endpoints)), zap.Error(c.failures))
			c.handler.OnOffline(c.failures)
			return
		}
		c.attempt++
		url := c.endpoints[c.index]
		c.log.Info("connecting", zap.String("url", url), zap.Int("attempt", c.attempt))
		t, err := c.dialer.Dial(c.attempt, url, c.events)
		if err != nil {
			c.log.Warn("connect attempt failed", zap.String("url", url), zap.Error(err))
			c.failures = multierr.Append(c.failures, fmt.Errorf("%s: %w", url, err))
			continue
		}
		c.transport = t
		c.deadline = now.Add(c.timeout)
		c.state = ChainConnecting
		return
	}
}

func (c *Chain) discard() error {
	if c.transport == nil {
		return nil
	}
	err := c.transport.Close()
	c.transport = nil
	return err
}
