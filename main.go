package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"emotechat/config"
	"emotechat/server"
)

const shutdownTimeout = 5 * time.Second

// 入口：读取配置，启动房间主循环与 HTTP + WebSocket 服务
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "server listen address, e.g. :3000")
	flag.Parse()

	if err := server.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	room := server.NewRoom(server.RoomOptions{
		WorldSize:         cfg.WorldSize,
		SpawnZoneFraction: cfg.SpawnZoneFraction,
		BatchInterval:     cfg.BatchInterval,
		MaxMessageBytes:   cfg.MaxMessageBytes,
		PingInterval:      cfg.PingInterval,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.SetupRoutes(room, cfg.StaticDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return room.Run(gctx)
	})
	g.Go(func() error {
		server.Log.Infof("listening on %s; open http://localhost%v/", cfg.Addr, cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	// 优雅退出（Ctrl+C）
	g.Go(func() error {
		<-gctx.Done()
		server.Log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		server.Log.Errorf("server stopped: %v", err)
	}
}
