package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"emotechat/client"
	"emotechat/matcher"
	"emotechat/motion"
)

const tickInterval = 16 * time.Millisecond

// 没有 -catalog 时机器人使用的动画
var defaultAnimations = []string{"idle", "walk", "wave", "dance", "jump", "cheer", "laughing", "sit_down"}

var chatLines = []string{"hi everyone", "anyone around?", "nice place", "brb", "gg"}

var emotePhrases = []string{"hello", "please dance", "can you jump", "lol laugh", "celebrate", "sitt dwn"}

type botConfig struct {
	endpoints []string
	name      string
	skin      string
	catalog   string
	vocab     string
	duration  time.Duration
	timeout   time.Duration
	seed      int64
}

// 无头测试机器人：连接（或离线）后随机走动、聊天、做表情
func main() {
	var cfg botConfig
	endpoints := flag.String("endpoints", "ws://localhost:3000/ws", "comma separated websocket urls, tried in order")
	flag.StringVar(&cfg.name, "name", "", "display name (random when empty)")
	flag.StringVar(&cfg.skin, "skin", "", "skin (random when empty)")
	flag.StringVar(&cfg.catalog, "catalog", "", "YAML animation catalog")
	flag.StringVar(&cfg.vocab, "vocab", "", "YAML matcher vocabulary")
	flag.DurationVar(&cfg.duration, "duration", 30*time.Second, "how long the bot stays")
	flag.DurationVar(&cfg.timeout, "timeout", client.DefaultConnectTimeout, "per-endpoint connect timeout")
	flag.Int64Var(&cfg.seed, "seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	for _, e := range strings.Split(*endpoints, ",") {
		if e = strings.TrimSpace(e); e != "" {
			cfg.endpoints = append(cfg.endpoints, e)
		}
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.duration)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("bot failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg botConfig, logger *zap.Logger) error {
	catalog := motion.NewCatalog(defaultAnimations, nil)
	if cfg.catalog != "" {
		c, err := motion.LoadCatalog(cfg.catalog)
		if err != nil {
			return err
		}
		catalog = c
	}
	vocab := matcher.DefaultVocabulary()
	if cfg.vocab != "" {
		v, err := matcher.LoadVocabulary(cfg.vocab)
		if err != nil {
			return err
		}
		vocab = v
	}

	rng := rand.New(rand.NewSource(cfg.seed))
	world := client.NewWorld(client.Options{
		Endpoints:      cfg.endpoints,
		ConnectTimeout: cfg.timeout,
		Catalog:        catalog,
		Matcher:        matcher.New(vocab, rand.New(rand.NewSource(cfg.seed+1))),
		Name:           cfg.name,
		Skin:           cfg.skin,
		Rand:           rng,
		Logger:         logger,
	})
	defer func() { _ = world.Close() }()

	world.Start(time.Now())
	logger.Info("bot started", zap.String("name", world.Name()), zap.String("skin", world.Skin()),
		zap.Strings("endpoints", cfg.endpoints))

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	var (
		input      motion.Input
		nextAction = time.Now().Add(time.Second)
	)
	for {
		select {
		case <-ctx.Done():
			logger.Info("bot finished", zap.String("id", world.SelfID()), zap.Bool("online", world.Online()),
				zap.Int("participants", world.Len()))
			return nil
		case now := <-ticker.C:
			if world.Local() != nil && !now.Before(nextAction) {
				input = act(world, rng, now, logger)
				nextAction = now.Add(time.Duration(1000+rng.Intn(2000)) * time.Millisecond)
			}
			world.Update(now, input)
		}
	}
}

// act 随机挑一个动作，返回接下来使用的输入
func act(world *client.World, rng *rand.Rand, now time.Time, logger *zap.Logger) motion.Input {
	switch rng.Intn(4) {
	case 0:
		in := motion.Input{DX: float64(rng.Intn(3) - 1), DY: float64(rng.Intn(3) - 1)}
		logger.Debug("wander", zap.Float64("dx", in.DX), zap.Float64("dy", in.DY))
		return in
	case 1:
		line := chatLines[rng.Intn(len(chatLines))]
		if err := world.Chat(line, now); err != nil {
			logger.Warn("chat failed", zap.Error(err))
		}
	case 2:
		phrase := emotePhrases[rng.Intn(len(emotePhrases))]
		if full, ok := world.Emote(phrase, now); ok {
			logger.Info("emote", zap.String("phrase", phrase), zap.String("animation", full))
		}
	}
	return motion.Input{}
}
