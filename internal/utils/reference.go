package utils

import (
	"fmt"
	"sync"
	"time"
)

// ReferenceGenerator issues time-stamped references such as
// OM-20250101-120000. When the same stamp is requested twice in one process
// the later ones get a monotonic suffix (-2, -3, ...), so references stay
// unique under concurrent load without changing the common format.
type ReferenceGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last map[string]string
	seq  map[string]int
}

func NewReferenceGenerator(now func() time.Time) *ReferenceGenerator {
	if now == nil {
		now = time.Now
	}
	return &ReferenceGenerator{
		now:  now,
		last: make(map[string]string),
		seq:  make(map[string]int),
	}
}

// Next returns prefix followed by the current time in layout.
func (g *ReferenceGenerator) Next(prefix, layout string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := prefix + "|" + layout
	stamp := prefix + g.now().Format(layout)

	if g.last[key] != stamp {
		g.last[key] = stamp
		g.seq[key] = 1
		return stamp
	}

	g.seq[key]++
	return fmt.Sprintf("%s-%d", stamp, g.seq[key])
}
