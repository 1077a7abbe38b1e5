package client

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"emotechat/matcher"
	"emotechat/motion"
	"emotechat/protocol"
)

var ErrNotSpawned = errors.New("local participant not spawned")

// update 引用未知 id 时的兜底出生点
var fallbackSpawn = protocol.Position{X: 400, Y: 300}

// playerJoined 缺坐标时的兜底
const joinFallbackCoord = 1000

// Options 客户端世界参数，零值字段取默认
type Options struct {
	Endpoints      []string
	Dialer         Dialer
	ConnectTimeout time.Duration

	Renderer Renderer
	Catalog  *motion.Catalog
	Matcher  *matcher.Matcher

	// Name/Skin 为空时随机生成
	Name  string
	Skin  string
	Skins []string

	WorldSize         float64
	SpawnZoneFraction float64
	Rand              *rand.Rand
	Logger            *zap.Logger
}

// World 客户端侧的世界：参与者名册、本地参与者与连接链
// 非并发安全，所有方法都应在同一个 tick 协程中调用
type World struct {
	opts     Options
	chain    *Chain
	log      *zap.Logger
	rng      *rand.Rand
	renderer Renderer
	catalog  *motion.Catalog
	matcher  *matcher.Matcher

	selfID  string
	name    string
	skin    string
	online  bool
	local   *motion.Participant
	players map[string]*motion.Participant

	throttle *motion.Throttle
	lastSent protocol.Position
	now      time.Time
	lastTick time.Time
}

func NewWorld(opts Options) *World {
	if opts.Dialer == nil {
		opts.Dialer = WSDialer{}
	}
	if opts.Renderer == nil {
		var names []string
		if opts.Catalog != nil {
			names = opts.Catalog.Names()
		}
		opts.Renderer = NopRenderer{Animations: names}
	}
	if opts.Matcher == nil {
		opts.Matcher = matcher.Default()
	}
	if opts.WorldSize <= 0 {
		opts.WorldSize = protocol.DefaultWorldSize
	}
	if opts.SpawnZoneFraction <= 0 {
		opts.SpawnZoneFraction = protocol.DefaultSpawnZoneFraction
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if len(opts.Skins) == 0 {
		opts.Skins = DefaultSkins
	}
	if opts.Name == "" {
		opts.Name = RandomName(opts.Rand)
	}
	if opts.Skin == "" {
		opts.Skin = RandomSkin(opts.Rand, opts.Skins)
	}

	w := &World{
		opts:     opts,
		log:      opts.Logger,
		rng:      opts.Rand,
		renderer: opts.Renderer,
		catalog:  opts.Catalog,
		matcher:  opts.Matcher,
		name:     opts.Name,
		skin:     opts.Skin,
		players:  make(map[string]*motion.Participant),
		throttle: motion.NewThrottle(motion.SendInterval),
	}
	w.chain = NewChain(opts.Endpoints, opts.Dialer, worldHandler{w}, ChainOptions{
		Timeout: opts.ConnectTimeout,
		Logger:  opts.Logger.Named("chain"),
	})
	return w
}

func (w *World) SelfID() string             { return w.selfID }
func (w *World) Name() string               { return w.name }
func (w *World) Skin() string               { return w.skin }
func (w *World) Online() bool               { return w.online }
func (w *World) ChainState() ChainState     { return w.chain.State() }
func (w *World) Local() *motion.Participant { return w.local }

// Participant 按 id 查找，包括本地参与者
func (w *World) Participant(id string) (*motion.Participant, bool) {
	p, ok := w.players[id]
	return p, ok
}

// Len 名册人数，包括本地参与者
func (w *World) Len() int { return len(w.players) }

// Start 开始按顺序尝试连接
func (w *World) Start(now time.Time) {
	w.now = now
	w.lastTick = now
	w.chain.Start(now)
}

// Update 推进一帧：处理网络事件、积分本地输入、节流发送位置、推进所有状态机
func (w *World) Update(now time.Time, in motion.Input) {
	var dt time.Duration
	if !w.lastTick.IsZero() {
		dt = now.Sub(w.lastTick)
	}
	w.lastTick = now
	w.now = now

	w.chain.Update(now)

	if w.local != nil {
		w.local.ApplyInput(in, dt, w.opts.WorldSize)
		w.sendPosition(now)
	}
	for _, p := range w.players {
		p.Update(now)
	}
}

// Close 断开连接
func (w *World) Close() error {
	w.online = false
	return w.chain.Close()
}

// Chat 显示本地气泡；在线时同时发送给服务端
func (w *World) Chat(text string, now time.Time) error {
	if w.local == nil {
		return ErrNotSpawned
	}
	text = protocol.Truncate(strings.TrimSpace(text), protocol.MaxChatLen)
	if text == "" {
		return nil
	}
	w.local.SetChat(text, now)
	w.renderer.ShowChat(w.selfID, text)
	if w.online {
		w.send(protocol.NewChat(text))
	}
	return nil
}

// Emote 把自由文本匹配到动画并在本地播放；在线时广播完整动画名
func (w *World) Emote(text string, now time.Time) (string, bool) {
	if w.local == nil {
		return "", false
	}
	var candidates []string
	if w.catalog != nil {
		candidates = w.catalog.SimpleNames()
	}
	name, ok := w.matcher.FindBestAnimation(text, candidates)
	if !ok {
		return "", false
	}
	full, ok := w.local.PlayEmote(name, now)
	if !ok {
		return "", false
	}
	w.log.Debug("emote", zap.String("text", text), zap.String("animation", full))
	if w.online {
		w.send(protocol.NewAnimate(full))
	}
	return full, true
}

func (w *World) sendPosition(now time.Time) {
	if !w.online {
		return
	}
	pos := w.local.Position().Rounded()
	if pos == w.lastSent || !w.throttle.Allow(now) {
		return
	}
	w.lastSent = pos
	w.send(protocol.NewMove(pos))
}

func (w *World) send(msg any) {
	b, err := protocol.Encode(msg)
	if err != nil {
		w.log.Error("encode outbound message", zap.Error(err))
		return
	}
	if err := w.chain.Send(b); err != nil {
		w.log.Debug("send failed", zap.Error(err))
	}
}

// spawnLocal 在自己随机的出生点生成本地参与者；在线时立即上报位置再声明身份
func (w *World) spawnLocal() {
	if w.local != nil {
		return
	}
	pos := protocol.SpawnPoint(w.rng, w.opts.WorldSize, w.opts.SpawnZoneFraction)
	rig := w.renderer.Spawn(w.selfID, w.name, w.skin, pos, true)
	w.local = motion.NewParticipant(w.selfID, pos, motion.Options{
		Name:    w.name,
		Skin:    w.skin,
		Local:   true,
		Rig:     rig,
		Catalog: w.catalog,
		Logger:  w.log,
	}, w.now)
	w.players[w.selfID] = w.local
	w.log.Info("spawned", zap.String("id", w.selfID), zap.String("name", w.name),
		zap.Float64("x", pos.X), zap.Float64("y", pos.Y), zap.Bool("online", w.online))

	if w.online {
		w.lastSent = pos
		w.send(protocol.NewMove(pos))
		w.send(protocol.NewJoin(w.name, w.skin))
	}
}

func (w *World) addRemote(id, name, skin string, pos protocol.Position) *motion.Participant {
	if p, ok := w.players[id]; ok {
		return p
	}
	if skin == "" {
		skin = protocol.DefaultSkin
	}
	rig := w.renderer.Spawn(id, name, skin, pos, false)
	p := motion.NewParticipant(id, pos, motion.Options{
		Name:    name,
		Skin:    skin,
		Rig:     rig,
		Catalog: w.catalog,
		Logger:  w.log,
	}, w.now)
	w.players[id] = p
	return p
}

func (w *World) remove(id string) {
	if id == w.selfID {
		return
	}
	if _, ok := w.players[id]; !ok {
		return
	}
	delete(w.players, id)
	w.renderer.Despawn(id)
}

func (w *World) handleMessage(data []byte) {
	msg, err := protocol.DecodeServer(data)
	if err != nil {
		w.log.Debug("drop server message", zap.Error(err))
		return
	}
	switch msg.Type {
	case protocol.TypeWelcome:
		if msg.ID == "" || w.local != nil {
			return
		}
		w.selfID = msg.ID
		w.spawnLocal()
	case protocol.TypeStateSync:
		for _, pl := range msg.Players {
			if pl.ID == w.selfID {
				continue
			}
			w.addRemote(pl.ID, pl.Name, pl.Skin, protocol.Position{X: pl.X, Y: pl.Y})
		}
	case protocol.TypePlayerJoined:
		if msg.ID == "" || msg.ID == w.selfID {
			return
		}
		if p, ok := w.players[msg.ID]; ok {
			// stateSync 可能早于对方的 playerJoined 到达，此时只补全身份
			p.Name, p.Skin = msg.Name, msg.Skin
			return
		}
		w.addRemote(msg.ID, msg.Name, msg.Skin, protocol.Position{
			X: coord(msg.X, joinFallbackCoord),
			Y: coord(msg.Y, joinFallbackCoord),
		})
	case protocol.TypePlayerLeft:
		w.remove(msg.ID)
	case protocol.TypeUpdate:
		w.applyUpdate(msg)
	case protocol.TypeBulkUpdate:
		for _, u := range msg.Updates {
			if u.ID == w.selfID {
				continue
			}
			x, y := u.X, u.Y
			w.applyUpdate(protocol.ServerMessage{
				Type: protocol.TypeUpdate, ID: u.ID, DataType: protocol.DataMove, X: &x, Y: &y,
			})
		}
	default:
		w.log.Debug("unknown server message", zap.String("type", msg.Type))
	}
}

func (w *World) applyUpdate(msg protocol.ServerMessage) {
	if msg.ID == "" || msg.ID == w.selfID {
		return
	}
	p, ok := w.players[msg.ID]
	if !ok {
		p = w.addRemote(msg.ID, "", protocol.DefaultSkin, protocol.Position{
			X: coord(msg.X, fallbackSpawn.X),
			Y: coord(msg.Y, fallbackSpawn.Y),
		})
	}
	switch msg.DataType {
	case protocol.DataMove:
		if msg.X == nil || msg.Y == nil {
			return
		}
		p.ApplyRemoteMove(protocol.Position{X: *msg.X, Y: *msg.Y}, w.now)
	case protocol.DataAnimate:
		if msg.Animation != "" {
			p.PlayEmote(msg.Animation, w.now)
		}
	case protocol.DataChat:
		p.SetChat(msg.Message, w.now)
		w.renderer.ShowChat(msg.ID, msg.Message)
	}
}

func (w *World) goOffline(reason error) {
	w.online = false
	if w.local != nil {
		w.log.Warn("connection lost, continuing offline", zap.Error(reason))
		return
	}
	w.selfID = uuid.NewString()
	w.log.Info("entering solo mode", zap.String("id", w.selfID), zap.Error(reason))
	w.spawnLocal()
}

func coord(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

// worldHandler 把连接链回调接到 World 上
type worldHandler struct{ w *World }

func (h worldHandler) OnOpen(url string) {
	h.w.online = true
	h.w.log.Info("online", zap.String("url", url))
}

func (h worldHandler) OnMessage(data []byte) { h.w.handleMessage(data) }

func (h worldHandler) OnOffline(reason error) { h.w.goOffline(reason) }
