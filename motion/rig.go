package motion

import "emotechat/protocol"

// Rig 渲染端提供的骨骼动画能力
// 状态机只通过它下发指令，唯一依赖的返回值是 HasAnimation
type Rig interface {
	HasAnimation(name string) bool
	Play(name string, loop bool)
	SetFacing(dir int)
	MoveTo(pos protocol.Position)
}

// NopRig 没有渲染端时使用（如无头机器人），拥有给定的动画列表
type NopRig struct {
	Animations map[string]bool
}

// NewNopRig 以动画名列表构造
func NewNopRig(names []string) *NopRig {
	r := &NopRig{Animations: make(map[string]bool, len(names))}
	for _, n := range names {
		r.Animations[n] = true
	}
	return r
}

func (r *NopRig) HasAnimation(name string) bool { return r.Animations[name] }
func (r *NopRig) Play(string, bool)             {}
func (r *NopRig) SetFacing(int)                 {}
func (r *NopRig) MoveTo(protocol.Position)      {}
