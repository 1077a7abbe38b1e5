package client

import (
	"context"
	"math/rand"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"emotechat/motion"
	"emotechat/server"
)

func startTestServer(t *testing.T) string {
	t.Helper()
	room := server.NewRoom(server.RoomOptions{
		BatchInterval: 20 * time.Millisecond,
		Rand:          rand.New(rand.NewSource(1)),
	})
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		_ = room.Run(ctx)
		close(stopped)
	}()
	srv := httptest.NewServer(server.SetupRoutes(room, ""))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-stopped
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

// waitUntil 以真实时间驱动 step 直到 cond 成立
func waitUntil(t *testing.T, step func(now time.Time), cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		step(time.Now())
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.FailNow(t, "condition not met", msg)
}

func TestWorldsMeetThroughServer(t *testing.T) {
	url := startTestServer(t)
	newWorld := func(name string, seed int64) *World {
		return NewWorld(Options{
			// 第一个候选拒绝连接，链应前进到真实服务端
			Endpoints:      []string{"ws://127.0.0.1:1/ws", url},
			ConnectTimeout: 2 * time.Second,
			Catalog:        testCatalog(),
			Name:           name,
			Skin:           "luigi",
			Rand:           rand.New(rand.NewSource(seed)),
		})
	}
	alice := newWorld("Alice", 1)
	bob := newWorld("Bob", 2)
	t.Cleanup(func() {
		_ = alice.Close()
		_ = bob.Close()
	})

	aliceInput := motion.Input{}
	step := func(now time.Time) {
		alice.Update(now, aliceInput)
		bob.Update(now, motion.Input{})
	}

	alice.Start(time.Now())
	waitUntil(t, func(now time.Time) { alice.Update(now, motion.Input{}) },
		func() bool { return alice.Online() && alice.Local() != nil }, "alice spawned online")

	bob.Start(time.Now())
	waitUntil(t, step, func() bool {
		if bob.Local() == nil {
			return false
		}
		_, bobSeesAlice := bob.Participant(alice.SelfID())
		_, aliceSeesBob := alice.Participant(bob.SelfID())
		return bobSeesAlice && aliceSeesBob
	}, "both rosters contain the other")

	waitUntil(t, step, func() bool {
		p, _ := bob.Participant(alice.SelfID())
		return p.Name == "Alice"
	}, "alice's identity reaches bob")

	startX := alice.Local().Position().X
	aliceInput = motion.Input{DX: 1}
	waitUntil(t, step, func() bool {
		p, _ := bob.Participant(alice.SelfID())
		return p.Position().X > startX+20
	}, "bob sees alice move")
	aliceInput = motion.Input{}

	// 等远端推断出停止，避免表情被移动打断
	waitUntil(t, step, func() bool {
		p, _ := bob.Participant(alice.SelfID())
		return p.State() == motion.StateIdle
	}, "bob sees alice stop")

	require.NoError(t, alice.Chat("hello bob", time.Now()))
	waitUntil(t, step, func() bool {
		p, _ := bob.Participant(alice.SelfID())
		text, ok := p.Chat(time.Now())
		return ok && text == "hello bob"
	}, "chat relayed")

	_, ok := alice.Emote("wave", time.Now())
	require.True(t, ok)
	waitUntil(t, step, func() bool {
		p, _ := bob.Participant(alice.SelfID())
		return p.Emote() == "emotes/wave"
	}, "emote relayed with the full animation name")

	aliceID := alice.SelfID()
	require.NoError(t, alice.Close())
	waitUntil(t, step, func() bool {
		_, ok := bob.Participant(aliceID)
		return !ok
	}, "bob drops alice after she leaves")
}
