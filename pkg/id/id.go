// Package id generates lexicographically sortable message identifiers.
package id

import (
	"encoding/binary"
	"sync"
	"time"
)

// ID is a 128-bit identifier encoded big-endian as
// [8 bytes ms timestamp][8 bytes sequence], so string order is issue order.
type ID [16]byte

// String returns the hex rendering.
func (i ID) String() string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(i)*2)
	for idx, v := range i {
		out[idx*2] = hexdigits[v>>4]
		out[idx*2+1] = hexdigits[v&0x0f]
	}
	return string(out)
}

// Generator produces monotonically increasing IDs per process.
type Generator struct {
	mu       sync.Mutex
	lastMs   int64
	sequence uint64
}

// NewGenerator creates a Generator.
func NewGenerator() *Generator { return &Generator{} }

// NowMs returns current time in milliseconds; overridable in tests.
var NowMs = func() int64 { return time.Now().UnixMilli() }

// Next returns a new ID. A clock that goes backwards reuses the last
// timestamp and keeps incrementing the sequence.
func (g *Generator) Next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := NowMs()
	if ms < g.lastMs {
		ms = g.lastMs
	}
	if ms == g.lastMs {
		g.sequence++
	} else {
		g.sequence = 0
	}
	g.lastMs = ms

	var id ID
	binary.BigEndian.PutUint64(id[0:8], uint64(ms))
	binary.BigEndian.PutUint64(id[8:16], g.sequence)
	return id
}
