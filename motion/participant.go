package motion

import (
	"math"
	"time"

	"go.uber.org/zap"

	"emotechat/protocol"
)

// Input 本地输入向量，分量取值 [-1, 1]（键盘为 -1/0/1，摇杆为归一化方向）
type Input struct {
	DX, DY float64
}

func (in Input) Moving() bool { return in.DX != 0 || in.DY != 0 }

// Options 创建参与者的参数
type Options struct {
	Name    string
	Skin    string
	Local   bool
	Rig     Rig
	Catalog *Catalog
	Logger  *zap.Logger
}

// Participant 一个参与者在客户端的视图与动画状态
// 只在客户端的 tick 协程中使用，不加锁
type Participant struct {
	ID    string
	Name  string
	Skin  string
	Local bool

	pos    protocol.Position
	facing int
	state  State

	emote        string
	emoteExpires time.Time

	spawnedAt    time.Time
	justSpawned  bool
	placed       bool      // 远端：首次 move 只定位
	lastMovement time.Time // 远端：最近一次超过 MoveEpsilon 的位移
	inputActive  bool      // 本地：本帧是否有方向输入

	chat        string
	chatExpires time.Time

	playing string // 最近下发给 rig 的动画
	rig     Rig
	catalog *Catalog
	log     *zap.Logger
}

// NewParticipant 在 pos 处创建参与者并进入 Idle 保护期
// 新的远端参与者 lastMovement 为零值，因此从 Idle 开始
func NewParticipant(id string, pos protocol.Position, opts Options, now time.Time) *Participant {
	if opts.Rig == nil {
		opts.Rig = NewNopRig(nil)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	p := &Participant{
		ID:          id,
		Name:        opts.Name,
		Skin:        opts.Skin,
		Local:       opts.Local,
		pos:         pos,
		facing:      1,
		state:       StateIdle,
		spawnedAt:   now,
		justSpawned: true,
		placed:      opts.Local,
		rig:         opts.Rig,
		catalog:     opts.Catalog,
		log:         opts.Logger.With(zap.String("participant", id)),
	}
	p.rig.MoveTo(pos)
	p.playLoop(protocol.IdleAnimation)
	return p
}

func (p *Participant) Position() protocol.Position { return p.pos }
func (p *Participant) Facing() int                 { return p.facing }
func (p *Participant) State() State                { return p.state }
func (p *Participant) Rig() Rig                    { return p.rig }

// Emote 当前表情的完整名，不在 Emoting 时为空
func (p *Participant) Emote() string { return p.emote }

// ApplyInput 本地输入：按速度积分位置并夹到世界边界内
func (p *Participant) ApplyInput(in Input, dt time.Duration, worldSize float64) {
	p.inputActive = in.Moving()
	if !p.inputActive {
		return
	}
	step := LocalSpeed * dt.Seconds()
	p.pos = ClampToWorld(protocol.Position{
		X: p.pos.X + in.DX*step,
		Y: p.pos.Y + in.DY*step,
	}, worldSize)
	p.rig.MoveTo(p.pos)
	p.face(in.DX)
}

// ApplyRemoteMove 远端位置更新；生成后的第一次更新只定位
func (p *Participant) ApplyRemoteMove(pos protocol.Position, now time.Time) {
	if !p.placed {
		p.placed = true
		p.pos = pos
		p.rig.MoveTo(pos)
		return
	}
	dx, dy := pos.X-p.pos.X, pos.Y-p.pos.Y
	p.pos = pos
	p.rig.MoveTo(pos)
	if math.Abs(dx) > MoveEpsilon || math.Abs(dy) > MoveEpsilon {
		p.lastMovement = now
	}
	p.face(dx)
}

// Moving 本地看输入，远端按最近位移时间推断
func (p *Participant) Moving(now time.Time) bool {
	if p.Local {
		return p.inputActive
	}
	return !p.lastMovement.IsZero() && now.Sub(p.lastMovement) < StopThreshold
}

// Update 每个 tick 调用一次：处理保护期、表情到期与行走/静止切换
func (p *Participant) Update(now time.Time) {
	if p.justSpawned {
		if now.Sub(p.spawnedAt) < SpawnGrace {
			return
		}
		p.justSpawned = false
	}

	moving := p.Moving(now)
	switch {
	case p.state == StateEmoting && moving:
		// 移动总是打断表情
		p.clearEmote()
		p.enter(StateWalking)
	case p.state == StateEmoting && !now.Before(p.emoteExpires):
		p.clearEmote()
		p.enter(StateIdle)
	case p.state == StateEmoting:
	case moving:
		p.enter(StateWalking)
	default:
		p.enter(StateIdle)
	}
}

// PlayEmote 播放一次性表情，name 可以是简化名
// 返回完整名；rig 没有该动画或同一表情正在播放时返回 false
func (p *Participant) PlayEmote(name string, now time.Time) (string, bool) {
	full := p.catalog.Resolve(name)
	if !p.rig.HasAnimation(full) {
		p.log.Debug("emote not available", zap.String("animation", full))
		return "", false
	}
	if p.state == StateEmoting && p.emote == full {
		p.log.Debug("emote already playing", zap.String("animation", full))
		return "", false
	}
	p.emote = full
	p.emoteExpires = now.Add(p.catalog.Duration(full))
	p.state = StateEmoting
	p.rig.Play(full, false)
	p.playing = full
	return full, true
}

// SetChat 显示聊天气泡
func (p *Participant) SetChat(text string, now time.Time) {
	p.chat = text
	p.chatExpires = now.Add(ChatBubbleTTL)
}

// Chat 当前仍在显示的气泡内容
func (p *Participant) Chat(now time.Time) (string, bool) {
	if p.chat == "" || !now.Before(p.chatExpires) {
		return "", false
	}
	return p.chat, true
}

func (p *Participant) clearEmote() {
	p.emote = ""
	p.emoteExpires = time.Time{}
}

// enter 切换到 Idle/Walking 并下发循环动画；rig 没有 walk 时退回 idle
func (p *Participant) enter(s State) {
	p.state = s
	if s == StateWalking && p.rig.HasAnimation(protocol.WalkAnimation) {
		p.playLoop(protocol.WalkAnimation)
		return
	}
	p.playLoop(protocol.IdleAnimation)
}

func (p *Participant) playLoop(name string) {
	if p.playing == name || !p.rig.HasAnimation(name) {
		return
	}
	p.rig.Play(name, true)
	p.playing = name
}

// face 只在水平位移非零且方向改变时翻转
func (p *Participant) face(dx float64) {
	if dx == 0 {
		return
	}
	dir := 1
	if dx < 0 {
		dir = -1
	}
	if dir == p.facing {
		return
	}
	p.facing = dir
	p.rig.SetFacing(dir)
}

// ClampToWorld 把位置夹到 [16, W-16] x [24, W-24]
func ClampToWorld(pos protocol.Position, worldSize float64) protocol.Position {
	return protocol.Position{
		X: clamp(pos.X, EdgeMarginX, worldSize-EdgeMarginX),
		Y: clamp(pos.Y, EdgeMarginY, worldSize-EdgeMarginY),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
