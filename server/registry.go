package server

import (
	"math/rand"

	"github.com/google/uuid"

	"emotechat/protocol"
)

// Registry 会话注册表：id -> 会话的权威状态
// 只允许房间协程读写，不加锁
type Registry struct {
	sessions map[string]*Session
	order    []string // 连接顺序，用于 stateSync 与广播

	worldSize    float64
	zoneFraction float64
	rng          *rand.Rand
	newID        func() string
}

func NewRegistry(worldSize, zoneFraction float64, rng *rand.Rand) *Registry {
	return &Registry{
		sessions:     make(map[string]*Session),
		worldSize:    worldSize,
		zoneFraction: zoneFraction,
		rng:          rng,
		newID:        func() string { return "user_" + uuid.NewString() },
	}
}

// Connect 分配新 id 与随机出生点；名字、皮肤在 playerJoined 之前为占位值
func (r *Registry) Connect(conn Conn) *Session {
	s := &Session{
		ID:       r.newID(),
		Position: protocol.SpawnPoint(r.rng, r.worldSize, r.zoneFraction),
		Name:     protocol.UnknownName,
		Skin:     protocol.DefaultSkin,
		Conn:     conn,
	}
	r.sessions[s.ID] = s
	r.order = append(r.order, s.ID)
	return s
}

// Join 记录显示身份。name/skin 为 nil 表示缺失或类型非法，回落到默认值
func (r *Registry) Join(id string, name, skin *string) (*Session, bool) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	s.Name = protocol.DefaultName
	if name != nil {
		s.Name = protocol.Truncate(*name, protocol.MaxNameLen)
	}
	s.Skin = protocol.DefaultSkin
	if skin != nil {
		s.Skin = protocol.Truncate(*skin, protocol.MaxSkinLen)
	}
	s.Joined = true
	return s, true
}

// Move 无条件覆盖权威位置（信任客户端，不做边界校验）
func (r *Registry) Move(id string, pos protocol.Position) bool {
	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	s.Position = pos
	return true
}

// Disconnect 移除会话的全部状态；重复调用返回 false
func (r *Registry) Disconnect(id string) (*Session, bool) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	delete(r.sessions, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return s, true
}

func (r *Registry) Get(id string) (*Session, bool) {
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) Len() int { return len(r.sessions) }

// Snapshot 返回除 excludeID 外的完整名单，按连接顺序
func (r *Registry) Snapshot(excludeID string) []protocol.PlayerInfo {
	players := make([]protocol.PlayerInfo, 0, len(r.order))
	for _, id := range r.order {
		if id == excludeID {
			continue
		}
		players = append(players, r.sessions[id].Info())
	}
	return players
}

// Each 按连接顺序遍历会话
func (r *Registry) Each(fn func(*Session)) {
	for _, id := range r.order {
		fn(r.sessions[id])
	}
}
