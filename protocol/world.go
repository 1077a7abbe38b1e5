package protocol

import "math/rand"

// 世界尺寸与出生区默认值
const (
	DefaultWorldSize         = 2000
	DefaultSpawnZoneFraction = 0.05
)

// SpawnPoint 在世界中心 ±worldSize*fraction 范围内均匀随机取点并取整
// 服务端分配出生点与离线客户端自行出生都走这里
func SpawnPoint(rng *rand.Rand, worldSize, fraction float64) Position {
	center := worldSize / 2
	zone := worldSize * fraction
	x := center + (rng.Float64()*2-1)*zone
	y := center + (rng.Float64()*2-1)*zone
	return Position{X: x, Y: y}.Rounded()
}
