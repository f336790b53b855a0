package id

import (
	"testing"
	"time"
)

func TestNextIsMonotonic(t *testing.T) {
	g := NewGenerator()
	prev := g.Next()
	for i := 0; i < 10_000; i++ {
		cur := g.Next()
		if cur.String() <= prev.String() {
			t.Fatalf("id order broke: %s then %s", prev, cur)
		}
		prev = cur
	}
}

func TestBackwardsClock(t *testing.T) {
	g := NewGenerator()
	base := int64(1_700_000_000_000)
	NowMs = func() int64 { return base }
	defer func() { NowMs = func() int64 { return time.Now().UnixMilli() } }()

	first := g.Next()
	NowMs = func() int64 { return base - 500 }
	second := g.Next()
	if second.String() <= first.String() {
		t.Fatalf("backwards clock must not reorder ids: %s then %s", first, second)
	}
}
