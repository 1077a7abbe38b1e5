package server

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"time"

	"emotechat/protocol"
)

// ErrRoomClosed 房间协程已退出
var ErrRoomClosed = errors.New("room closed")

// RoomOptions 房间参数，零值字段使用默认值
type RoomOptions struct {
	WorldSize         float64
	SpawnZoneFraction float64
	BatchInterval     time.Duration
	MaxMessageBytes   int
	PingInterval      time.Duration
	Rand              *rand.Rand
}

// RoomView 房间状态的只读视图
type RoomView struct {
	Players []protocol.PlayerInfo
	Pending int
	Idle    bool
}

// Room 共享空间：注册表、待发送集合与批量定时器都只由 Run 所在的协程访问
// 其他协程通过收件箱投递消息
type Room struct {
	inbox chan roomMsg
	done  chan struct{}

	registry   *Registry
	scheduler  *Scheduler
	flushTimer *time.Timer
	flushC     <-chan time.Time // 为 nil 时调度器空闲

	batchInterval   atomic.Int64
	maxMessageBytes int
	pingInterval    time.Duration

	metrics   *RoomMetrics
	sessions  atomic.Int64
	startedAt time.Time
}

// NewRoom 创建房间，调用方需另起协程执行 Run
func NewRoom(opts RoomOptions) *Room {
	if opts.WorldSize <= 0 {
		opts.WorldSize = protocol.DefaultWorldSize
	}
	if opts.SpawnZoneFraction <= 0 {
		opts.SpawnZoneFraction = protocol.DefaultSpawnZoneFraction
	}
	if opts.BatchInterval <= 0 {
		opts.BatchInterval = DefaultBatchInterval
	}
	if opts.MaxMessageBytes <= 0 {
		opts.MaxMessageBytes = protocol.MaxMessageBytes
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	r := &Room{
		inbox:           make(chan roomMsg, 256), // 足够缓冲，避免网络读阻塞
		done:            make(chan struct{}),
		registry:        NewRegistry(opts.WorldSize, opts.SpawnZoneFraction, opts.Rand),
		scheduler:       NewScheduler(),
		maxMessageBytes: opts.MaxMessageBytes,
		pingInterval:    opts.PingInterval,
		metrics:         &RoomMetrics{},
		startedAt:       time.Now(),
	}
	r.batchInterval.Store(int64(opts.BatchInterval))
	return r
}

// Run 房间主循环，直到 ctx 取消；退出时关闭所有连接
func (r *Room) Run(ctx context.Context) error {
	defer close(r.done)
	defer r.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case m := <-r.inbox:
			r.handle(m)
		case <-r.flushC:
			r.flush()
		}
	}
}

// Connect 为新连接创建会话，返回会话 id；welcome 与 stateSync 已写入 conn
func (r *Room) Connect(ctx context.Context, conn Conn) (string, error) {
	reply := make(chan string, 1)
	if err := r.post(ctx, connectMsg{Conn: conn, Reply: reply}); err != nil {
		return "", err
	}
	select {
	case id := <-reply:
		return id, nil
	case <-r.done:
		return "", ErrRoomClosed
	case <-ctx.Done():
		// connectMsg 已入队，房间仍会注册该会话；拿到 id 后立即移除
		go func() {
			select {
			case id := <-reply:
				r.Leave(id)
			case <-r.done:
			}
		}()
		return "", ctx.Err()
	}
}

// HandleFrame 解析一帧客户端消息并投递；非法帧计数后静默丢弃，不回复发送方
func (r *Room) HandleFrame(id string, raw []byte) {
	msg, err := parseInbound(id, raw, r.maxMessageBytes)
	if err != nil {
		switch {
		case errors.Is(err, protocol.ErrMessageTooLarge):
			r.metrics.IncOversized()
		case errors.Is(err, errUnknownType):
			r.metrics.IncUnknownType()
		default:
			r.metrics.IncMalformed()
		}
		Log.Debugf("drop frame: id=%s err=%v", id, err)
		return
	}
	_ = r.post(context.Background(), msg)
}

// Leave 请求在房间协程中移除会话（可重复调用）
func (r *Room) Leave(id string) {
	_ = r.post(context.Background(), leaveMsg{ID: id})
}

// State 在房间协程中读取当前状态
func (r *Room) State(ctx context.Context) (RoomView, error) {
	reply := make(chan RoomView, 1)
	if err := r.post(ctx, getState{Reply: reply}); err != nil {
		return RoomView{}, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-r.done:
		return RoomView{}, ErrRoomClosed
	case <-ctx.Done():
		return RoomView{}, ctx.Err()
	}
}

// SetBatchInterval 运行时调整批量间隔，下一次计时生效
func (r *Room) SetBatchInterval(d time.Duration) error {
	if d <= 0 {
		return errors.New("batch interval must be positive")
	}
	r.batchInterval.Store(int64(d))
	return nil
}

func (r *Room) BatchInterval() time.Duration { return time.Duration(r.batchInterval.Load()) }
func (r *Room) PingInterval() time.Duration  { return r.pingInterval }
func (r *Room) Metrics() *RoomMetrics        { return r.metrics }
func (r *Room) Sessions() int                { return int(r.sessions.Load()) }
func (r *Room) Uptime() time.Duration        { return time.Since(r.startedAt) }

func (r *Room) post(ctx context.Context, m roomMsg) error {
	select {
	case r.inbox <- m:
		return nil
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Room) handle(m roomMsg) {
	switch msg := m.(type) {
	case connectMsg:
		s := r.registry.Connect(msg.Conn)
		r.sessions.Store(int64(r.registry.Len()))
		r.metrics.IncOpened()
		Log.Infof("session connected: id=%s spawn=[%.0f, %.0f]", s.ID, s.Position.X, s.Position.Y)
		r.sendTo(s, protocol.NewWelcome(s.ID))
		r.sendTo(s, protocol.NewStateSync(r.registry.Snapshot(s.ID)))
		msg.Reply <- s.ID

	case joinMsg:
		var rejoin bool
		if prev, ok := r.registry.Get(msg.ID); ok {
			rejoin = prev.Joined
		}
		s, ok := r.registry.Join(msg.ID, msg.Name, msg.Skin)
		if !ok {
			return
		}
		if rejoin {
			// 重复声明身份：覆盖名字与皮肤，照常广播
			Log.Infof("session re-announced identity: id=%s name=%q skin=%q", s.ID, s.Name, s.Skin)
		} else {
			Log.Infof("session joined: id=%s name=%q skin=%q at [%.0f, %.0f]", s.ID, s.Name, s.Skin, s.Position.X, s.Position.Y)
		}
		r.broadcast(protocol.NewPlayerJoined(s.Info()), s.ID)

	case moveMsg:
		if !r.registry.Move(msg.ID, msg.Pos) {
			return
		}
		r.metrics.IncMoves()
		if r.scheduler.Record(msg.ID, msg.Pos) {
			r.armFlush()
		}

	case animateMsg:
		if _, ok := r.registry.Get(msg.ID); !ok {
			return
		}
		r.metrics.IncRelayed()
		r.broadcast(protocol.NewAnimateUpdate(msg.ID, msg.Animation), msg.ID)

	case chatMsg:
		if _, ok := r.registry.Get(msg.ID); !ok {
			return
		}
		r.metrics.IncRelayed()
		r.broadcast(protocol.NewChatUpdate(msg.ID, msg.Message), msg.ID)

	case leaveMsg:
		s, ok := r.registry.Disconnect(msg.ID)
		if !ok {
			return
		}
		r.scheduler.Discard(s.ID)
		_ = s.Conn.Close()
		r.sessions.Store(int64(r.registry.Len()))
		r.metrics.IncClosed()
		Log.Infof("session disconnected: id=%s", s.ID)
		r.broadcast(protocol.NewPlayerLeft(s.ID), "")

	case getState:
		msg.Reply <- RoomView{
			Players: r.registry.Snapshot(""),
			Pending: r.scheduler.Len(),
			Idle:    r.scheduler.Idle(),
		}
	}
}

// armFlush 启动一次性批量定时器
// 只在定时器已触发并被消费（或从未创建）时调用，Reset 是安全的
func (r *Room) armFlush() {
	d := r.BatchInterval()
	if r.flushTimer == nil {
		r.flushTimer = time.NewTimer(d)
	} else {
		r.flushTimer.Reset(d)
	}
	r.flushC = r.flushTimer.C
}

// flush 定时器触发：集合为空则转为空闲，否则发出一条 bulkUpdate 并重新计时
func (r *Room) flush() {
	start := time.Now()
	updates := r.scheduler.Drain()
	if updates == nil {
		r.flushC = nil
		r.metrics.IncIdle()
		return
	}
	r.broadcast(protocol.NewBulkUpdate(updates), "")
	r.armFlush()
	r.metrics.AddFlush(len(updates), time.Since(start).Nanoseconds())
}

// broadcast 编码一次，发送给除 excludeID 外的所有会话
func (r *Room) broadcast(msg any, excludeID string) {
	b, err := protocol.Encode(msg)
	if err != nil {
		Log.Errorf("encode broadcast: %v", err)
		return
	}
	r.registry.Each(func(s *Session) {
		if s.ID == excludeID {
			return
		}
		r.sendBytes(s, b)
	})
}

func (r *Room) sendTo(s *Session, msg any) {
	b, err := protocol.Encode(msg)
	if err != nil {
		Log.Errorf("encode message for %s: %v", s.ID, err)
		return
	}
	r.sendBytes(s, b)
}

func (r *Room) sendBytes(s *Session, b []byte) {
	if err := s.Conn.Send(b); err != nil {
		r.metrics.IncSendDropped()
		Log.Debugf("send to %s dropped: %v", s.ID, err)
	}
}

func (r *Room) shutdown() {
	if r.flushTimer != nil {
		r.flushTimer.Stop()
	}
	r.registry.Each(func(s *Session) {
		_ = s.Conn.Close()
	})
	Log.Infof("room stopped: sessions=%d", r.registry.Len())
}
