package client

import (
	"emotechat/motion"
	"emotechat/protocol"
)

// Renderer 显示端：为参与者创建精灵并返回其 Rig
type Renderer interface {
	Spawn(id, name, skin string, pos protocol.Position, local bool) motion.Rig
	Despawn(id string)
	ShowChat(id, text string)
}

// NopRenderer 无头模式，所有精灵共用同一份动画列表
type NopRenderer struct {
	Animations []string
}

func (r NopRenderer) Spawn(string, string, string, protocol.Position, bool) motion.Rig {
	return motion.NewNopRig(r.Animations)
}

func (NopRenderer) Despawn(string) {}

func (NopRenderer) ShowChat(string, string) {}
