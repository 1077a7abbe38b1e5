package protocol

import json "github.com/goccy/go-json"

// PlayerInfo 客户端可见的玩家信息
type PlayerInfo struct {
	ID   string  `json:"id"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Name string  `json:"name"`
	Skin string  `json:"skin"`
}

// PositionUpdate bulkUpdate 中的一条位置记录
type PositionUpdate struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type Welcome struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type StateSync struct {
	Type    string       `json:"type"`
	Players []PlayerInfo `json:"players"`
}

type PlayerJoined struct {
	Type string `json:"type"`
	PlayerInfo
}

type PlayerLeft struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Update 单个会话的离散变更，只填充与 DataType 对应的字段
type Update struct {
	Type      string   `json:"type"`
	ID        string   `json:"id"`
	DataType  string   `json:"dataType"`
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
	Animation string   `json:"animation,omitempty"`
	Message   *string  `json:"message,omitempty"`
}

type BulkUpdate struct {
	Type    string           `json:"type"`
	Updates []PositionUpdate `json:"updates"`
}

func NewWelcome(id string) Welcome {
	return Welcome{Type: TypeWelcome, ID: id}
}

func NewStateSync(players []PlayerInfo) StateSync {
	if players == nil {
		players = []PlayerInfo{}
	}
	return StateSync{Type: TypeStateSync, Players: players}
}

func NewPlayerJoined(info PlayerInfo) PlayerJoined {
	return PlayerJoined{Type: TypePlayerJoined, PlayerInfo: info}
}

func NewPlayerLeft(id string) PlayerLeft {
	return PlayerLeft{Type: TypePlayerLeft, ID: id}
}

func NewAnimateUpdate(id, animation string) Update {
	return Update{Type: TypeUpdate, ID: id, DataType: DataAnimate, Animation: animation}
}

func NewChatUpdate(id, message string) Update {
	return Update{Type: TypeUpdate, ID: id, DataType: DataChat, Message: &message}
}

func NewMoveUpdate(id string, pos Position) Update {
	x, y := pos.X, pos.Y
	return Update{Type: TypeUpdate, ID: id, DataType: DataMove, X: &x, Y: &y}
}

func NewBulkUpdate(updates []PositionUpdate) BulkUpdate {
	if updates == nil {
		updates = []PositionUpdate{}
	}
	return BulkUpdate{Type: TypeBulkUpdate, Updates: updates}
}

// Join 客户端声明显示身份（名字、皮肤由服务端截断）
type Join struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Skin string `json:"skin"`
}

// Move 客户端上报自身位置（整数坐标）
type Move struct {
	Type string `json:"type"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

type Animate struct {
	Type      string `json:"type"`
	Animation string `json:"animation"`
}

type Chat struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewJoin(name, skin string) Join {
	return Join{Type: TypePlayerJoined, Name: name, Skin: skin}
}

// NewMove 编码前先取整
func NewMove(pos Position) Move {
	r := pos.Rounded()
	return Move{Type: TypeMove, X: int(r.X), Y: int(r.Y)}
}

func NewAnimate(animation string) Animate {
	return Animate{Type: TypeAnimate, Animation: animation}
}

func NewChat(message string) Chat {
	return Chat{Type: TypeChat, Message: message}
}

// Inbound 客户端入站消息。Name/Skin/Message 保留原始 JSON，类型不对时退化为默认值而不是整帧丢弃
type Inbound struct {
	Type      string          `json:"type"`
	Name      json.RawMessage `json:"name,omitempty"`
	Skin      json.RawMessage `json:"skin,omitempty"`
	X         *float64        `json:"x,omitempty"`
	Y         *float64        `json:"y,omitempty"`
	Animation *string         `json:"animation,omitempty"`
	Message   json.RawMessage `json:"message,omitempty"`
}

// ServerMessage 所有服务端消息的并集，客户端先解码再按 Type 分发
type ServerMessage struct {
	Type      string           `json:"type"`
	ID        string           `json:"id,omitempty"`
	X         *float64         `json:"x,omitempty"`
	Y         *float64         `json:"y,omitempty"`
	Name      string           `json:"name,omitempty"`
	Skin      string           `json:"skin,omitempty"`
	DataType  string           `json:"dataType,omitempty"`
	Animation string           `json:"animation,omitempty"`
	Message   string           `json:"message,omitempty"`
	Players   []PlayerInfo     `json:"players,omitempty"`
	Updates   []PositionUpdate `json:"updates,omitempty"`
}
