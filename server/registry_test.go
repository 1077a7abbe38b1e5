package server

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emotechat/protocol"
)

func newTestRegistry() *Registry {
	return NewRegistry(2000, 0.05, rand.New(rand.NewSource(42)))
}

func strPtr(s string) *string { return &s }

func TestRegistrySpawnWithinZoneAndIntegral(t *testing.T) {
	reg := newTestRegistry()
	for i := 0; i < 200; i++ {
		s := reg.Connect(nil)
		for _, v := range []float64{s.Position.X, s.Position.Y} {
			assert.GreaterOrEqual(t, v, 900.0)
			assert.LessOrEqual(t, v, 1100.0)
			assert.Equal(t, math.Trunc(v), v, "spawn coordinate must be integral")
		}
	}
}

func TestRegistryConnectAssignsUniqueIDs(t *testing.T) {
	reg := newTestRegistry()
	a := reg.Connect(nil)
	b := reg.Connect(nil)
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, strings.HasPrefix(a.ID, "user_"))
	assert.Equal(t, protocol.UnknownName, a.Name)
	assert.Equal(t, protocol.DefaultSkin, a.Skin)
}

func TestRegistryJoinTruncates(t *testing.T) {
	reg := newTestRegistry()
	s := reg.Connect(nil)

	got, ok := reg.Join(s.ID, strPtr(strings.Repeat("n", 60)), strPtr(strings.Repeat("s", 80)))
	require.True(t, ok)
	assert.Len(t, got.Name, 20)
	assert.Len(t, got.Skin, 50)
	assert.True(t, got.Joined)
}

func TestRegistryJoinDefaultsInvalidIdentity(t *testing.T) {
	reg := newTestRegistry()
	s := reg.Connect(nil)

	got, ok := reg.Join(s.ID, nil, nil)
	require.True(t, ok)
	assert.Equal(t, protocol.DefaultName, got.Name)
	assert.Equal(t, protocol.DefaultSkin, got.Skin)

	_, ok = reg.Join("user_missing", strPtr("x"), nil)
	assert.False(t, ok)
}

func TestRegistryMoveOverwritesUnconditionally(t *testing.T) {
	reg := newTestRegistry()
	s := reg.Connect(nil)

	require.True(t, reg.Move(s.ID, protocol.Position{X: 10, Y: 10}))
	require.True(t, reg.Move(s.ID, protocol.Position{X: -5000, Y: 99999}))
	got, _ := reg.Get(s.ID)
	assert.Equal(t, protocol.Position{X: -5000, Y: 99999}, got.Position)

	assert.False(t, reg.Move("user_missing", protocol.Position{}))
}

func TestRegistrySnapshotExcludesRequesterInConnectOrder(t *testing.T) {
	reg := newTestRegistry()
	a := reg.Connect(nil)
	b := reg.Connect(nil)
	c := reg.Connect(nil)

	snap := reg.Snapshot(b.ID)
	require.Len(t, snap, 2)
	assert.Equal(t, a.ID, snap[0].ID)
	assert.Equal(t, c.ID, snap[1].ID)
}

func TestRegistryDisconnectIsIdempotent(t *testing.T) {
	reg := newTestRegistry()
	a := reg.Connect(nil)
	b := reg.Connect(nil)

	_, ok := reg.Disconnect(a.ID)
	require.True(t, ok)
	_, ok = reg.Disconnect(a.ID)
	assert.False(t, ok)

	assert.Equal(t, 1, reg.Len())
	snap := reg.Snapshot("")
	require.Len(t, snap, 1)
	assert.Equal(t, b.ID, snap[0].ID)
}
