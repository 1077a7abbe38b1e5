// Package config 从 .env 与环境变量加载服务端配置
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

// Config 服务端运行参数
type Config struct {
	Addr              string
	LogFile           string
	LogLevel          string
	StaticDir         string
	WorldSize         float64
	SpawnZoneFraction float64
	BatchInterval     time.Duration
	MaxMessageBytes   int
	PingInterval      time.Duration
}

// Default 默认配置：端口 3000、世界 2000、批量间隔 100ms
func Default() Config {
	return Config{
		Addr:              ":3000",
		LogFile:           "app.log",
		LogLevel:          "info",
		StaticDir:         "web",
		WorldSize:         2000,
		SpawnZoneFraction: 0.05,
		BatchInterval:     100 * time.Millisecond,
		MaxMessageBytes:   12000,
		PingInterval:      30 * time.Second,
	}
}

// Load 读取可选的 .env 文件，再用环境变量覆盖默认值
// 所有解析错误一次性汇总返回
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv 从给定的查找函数构造配置，便于测试注入
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var err error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *float64) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		f, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", key, perr))
			return
		}
		*dst = f
	}
	integer := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		n, perr := strconv.Atoi(v)
		if perr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", key, perr))
			return
		}
		*dst = n
	}
	dur := func(key string, dst *time.Duration) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		d, perr := time.ParseDuration(v)
		if perr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", key, perr))
			return
		}
		*dst = d
	}

	str("ADDR", &cfg.Addr)
	str("LOG_FILE", &cfg.LogFile)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("STATIC_DIR", &cfg.StaticDir)
	num("WORLD_SIZE", &cfg.WorldSize)
	num("SPAWN_ZONE_FRACTION", &cfg.SpawnZoneFraction)
	dur("BATCH_INTERVAL", &cfg.BatchInterval)
	integer("MAX_MESSAGE_BYTES", &cfg.MaxMessageBytes)
	dur("PING_INTERVAL", &cfg.PingInterval)

	if err != nil {
		return Config{}, err
	}
	if verr := cfg.Validate(); verr != nil {
		return Config{}, verr
	}
	return cfg, nil
}

// Validate 检查取值范围
func (c Config) Validate() error {
	var err error
	if c.Addr == "" {
		err = multierr.Append(err, errors.New("ADDR must not be empty"))
	}
	if c.WorldSize <= 0 {
		err = multierr.Append(err, fmt.Errorf("WORLD_SIZE must be positive, got %v", c.WorldSize))
	}
	if c.SpawnZoneFraction < 0 || c.SpawnZoneFraction > 0.5 {
		err = multierr.Append(err, fmt.Errorf("SPAWN_ZONE_FRACTION must be within [0, 0.5], got %v", c.SpawnZoneFraction))
	}
	if c.BatchInterval <= 0 {
		err = multierr.Append(err, fmt.Errorf("BATCH_INTERVAL must be positive, got %v", c.BatchInterval))
	}
	if c.MaxMessageBytes <= 0 {
		err = multierr.Append(err, fmt.Errorf("MAX_MESSAGE_BYTES must be positive, got %d", c.MaxMessageBytes))
	}
	if c.PingInterval <= 0 {
		err = multierr.Append(err, fmt.Errorf("PING_INTERVAL must be positive, got %v", c.PingInterval))
	}
	return err
}
