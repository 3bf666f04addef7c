package feishu

import "time"

// NewDeduperForTest builds a Deduper with injectable limits and clock.
func NewDeduperForTest(ttl time.Duration, max int, now ...func() time.Time) *Deduper {
	d := &Deduper{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		max:  max,
		now:  time.Now,
	}
	if len(now) > 0 && now[0] != nil {
		d.now = now[0]
	}
	return d
}
