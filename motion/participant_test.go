package motion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emotechat/protocol"
)

type play struct {
	name string
	loop bool
}

type fakeRig struct {
	anims   map[string]bool
	plays   []play
	facings []int
	moves   []protocol.Position
}

func newFakeRig(names ...string) *fakeRig {
	r := &fakeRig{anims: make(map[string]bool)}
	for _, n := range names {
		r.anims[n] = true
	}
	return r
}

func (r *fakeRig) HasAnimation(name string) bool { return r.anims[name] }
func (r *fakeRig) Play(name string, loop bool)   { r.plays = append(r.plays, play{name, loop}) }
func (r *fakeRig) SetFacing(dir int)             { r.facings = append(r.facings, dir) }
func (r *fakeRig) MoveTo(pos protocol.Position)  { r.moves = append(r.moves, pos) }
func (r *fakeRig) lastPlay() play                { return r.plays[len(r.plays)-1] }

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

func newLocal(rig *fakeRig, cat *Catalog) *Participant {
	return NewParticipant("me", protocol.Position{X: 1000, Y: 1000}, Options{Local: true, Rig: rig, Catalog: cat}, t0)
}

func newRemote(rig *fakeRig) *Participant {
	return NewParticipant("peer", protocol.Position{X: 400, Y: 300}, Options{Rig: rig}, t0)
}

func TestNewParticipantStartsIdle(t *testing.T) {
	rig := newFakeRig("idle", "walk")
	p := newRemote(rig)
	assert.Equal(t, StateIdle, p.State())
	assert.Equal(t, []play{{"idle", true}}, rig.plays)
	assert.Equal(t, 1, p.Facing())
}

func TestSpawnGraceSuppressesTransitions(t *testing.T) {
	rig := newFakeRig("idle", "walk")
	p := newLocal(rig, nil)

	p.ApplyInput(Input{DX: 1}, 16*time.Millisecond, 2000)
	p.Update(at(50))
	assert.Equal(t, StateIdle, p.State(), "transitions are suppressed inside the grace window")

	p.ApplyInput(Input{DX: 1}, 16*time.Millisecond, 2000)
	p.Update(at(120))
	assert.Equal(t, StateWalking, p.State())
	assert.Equal(t, play{"walk", true}, rig.lastPlay())
}

func TestEmoteInterruptedByMovementThenIdle(t *testing.T) {
	rig := newFakeRig("idle", "walk", "emotes/wave")
	cat := NewCatalog([]string{"idle", "walk", "emotes/wave"}, map[string]time.Duration{"emotes/wave": 2 * time.Second})
	p := newLocal(rig, cat)
	p.Update(at(200))

	full, ok := p.PlayEmote("wave", at(300))
	require.True(t, ok)
	assert.Equal(t, "emotes/wave", full)
	assert.Equal(t, StateEmoting, p.State())
	assert.Equal(t, play{"emotes/wave", false}, rig.lastPlay())

	p.ApplyInput(Input{DY: -1}, 16*time.Millisecond, 2000)
	p.Update(at(400))
	assert.Equal(t, StateWalking, p.State())
	assert.Empty(t, p.Emote(), "interrupting clears the pending expiry")

	p.ApplyInput(Input{}, 16*time.Millisecond, 2000)
	p.Update(at(500))
	assert.Equal(t, StateIdle, p.State())

	// 原表情的到期时间早已失效，不会回到表情
	p.Update(at(2400))
	assert.Equal(t, StateIdle, p.State())
	assert.Equal(t, play{"idle", true}, rig.lastPlay())
}

func TestEmoteExpiresToIdle(t *testing.T) {
	rig := newFakeRig("idle", "walk", "dance")
	p := newLocal(rig, NewCatalog([]string{"dance"}, nil))
	p.Update(at(200))

	_, ok := p.PlayEmote("dance", at(1000))
	require.True(t, ok)

	p.Update(at(1999))
	assert.Equal(t, StateEmoting, p.State())
	p.Update(at(2000))
	assert.Equal(t, StateIdle, p.State(), "unknown duration defaults to one second")
}

func TestEmoteSameIsNoopAndUnavailableIsNoop(t *testing.T) {
	rig := newFakeRig("idle", "dance")
	p := newLocal(rig, nil)

	_, ok := p.PlayEmote("dance", at(200))
	require.True(t, ok)
	plays := len(rig.plays)

	_, ok = p.PlayEmote("dance", at(300))
	assert.False(t, ok)
	_, ok = p.PlayEmote("backflip", at(300))
	assert.False(t, ok)
	assert.Len(t, rig.plays, plays)
	assert.Equal(t, StateEmoting, p.State())
}

func TestRemoteFirstMoveOnlyPlaces(t *testing.T) {
	rig := newFakeRig("idle", "walk")
	p := newRemote(rig)

	p.ApplyRemoteMove(protocol.Position{X: 100, Y: 300}, at(150))
	p.Update(at(160))
	assert.Equal(t, StateIdle, p.State())
	assert.Empty(t, rig.facings, "placement does not flip facing")
	assert.Equal(t, protocol.Position{X: 100, Y: 300}, p.Position())
}

func TestRemoteStopInference(t *testing.T) {
	rig := newFakeRig("idle", "walk")
	p := newRemote(rig)
	p.ApplyRemoteMove(protocol.Position{X: 400, Y: 300}, at(150))

	p.ApplyRemoteMove(protocol.Position{X: 380, Y: 300}, at(200))
	p.Update(at(210))
	assert.Equal(t, StateWalking, p.State())
	assert.Equal(t, []int{-1}, rig.facings)

	// 亚像素抖动不算移动
	p.ApplyRemoteMove(protocol.Position{X: 380.5, Y: 300.5}, at(300))
	p.Update(at(449))
	assert.Equal(t, StateWalking, p.State())
	p.Update(at(450))
	assert.Equal(t, StateIdle, p.State())
}

func TestFacingFlipsOnlyOnHorizontalChange(t *testing.T) {
	rig := newFakeRig("idle")
	p := newRemote(rig)
	p.ApplyRemoteMove(protocol.Position{X: 400, Y: 300}, at(0))

	p.ApplyRemoteMove(protocol.Position{X: 410, Y: 300}, at(100)) // 已朝右
	p.ApplyRemoteMove(protocol.Position{X: 410, Y: 200}, at(200)) // 纯垂直
	p.ApplyRemoteMove(protocol.Position{X: 400, Y: 200}, at(300))
	p.ApplyRemoteMove(protocol.Position{X: 390, Y: 200}, at(400))
	assert.Equal(t, []int{-1}, rig.facings)
	assert.Equal(t, -1, p.Facing())
}

func TestWalkingWithoutWalkAnimationFallsBackToIdle(t *testing.T) {
	rig := newFakeRig("idle")
	p := newLocal(rig, nil)
	p.ApplyInput(Input{DX: 1}, 16*time.Millisecond, 2000)
	p.Update(at(200))
	assert.Equal(t, StateWalking, p.State())
	assert.Equal(t, []play{{"idle", true}}, rig.plays)
}

func TestApplyInputIntegratesAndClamps(t *testing.T) {
	p := newLocal(newFakeRig("idle"), nil)
	p.ApplyInput(Input{DX: 1}, 500*time.Millisecond, 2000)
	assert.Equal(t, protocol.Position{X: 1100, Y: 1000}, p.Position())

	p.ApplyInput(Input{DX: -1, DY: -1}, 20*time.Second, 2000)
	assert.Equal(t, protocol.Position{X: 16, Y: 24}, p.Position())

	p.ApplyInput(Input{DX: 1, DY: 1}, 20*time.Second, 2000)
	assert.Equal(t, protocol.Position{X: 1984, Y: 1976}, p.Position())
}

func TestChatBubbleExpires(t *testing.T) {
	p := newRemote(newFakeRig())
	p.SetChat("hello", at(0))
	text, ok := p.Chat(at(3999))
	require.True(t, ok)
	assert.Equal(t, "hello", text)
	_, ok = p.Chat(at(4000))
	assert.False(t, ok)
}
