package motion

import "time"

// Throttle 限制事件频率：距上次放行超过 interval 才再次放行
type Throttle struct {
	interval time.Duration
	last     time.Time
}

func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval}
}

// Allow 是否放行；放行时记录时间
func (t *Throttle) Allow(now time.Time) bool {
	if !t.last.IsZero() && now.Sub(t.last) <= t.interval {
		return false
	}
	t.last = now
	return true
}
