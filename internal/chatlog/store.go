package chatlog

import (
	"sort"
	"sync"
	"time"
)

// Store keeps one append-only log of messages per channel key. Any number of
// readers may snapshot a log concurrently; appends are serialized. A read that
// races an append observes either the prior log or the log including the whole
// new message, never a torn entry.
type Store struct {
	mu       sync.RWMutex
	channels map[string][]Message
	notifyCh chan struct{}
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		channels: make(map[string][]Message),
		notifyCh: make(chan struct{}),
	}
}

// Append inserts msg at the tail of the channel's log, creating the log if
// absent, and wakes any blocked waiters.
func (s *Store) Append(channelKey string, msg Message) {
	s.mu.Lock()
	s.channels[channelKey] = append(s.channels[channelKey], msg)
	// notify waiters
	close(s.notifyCh)
	s.notifyCh = make(chan struct{})
	s.mu.Unlock()
}

// Read returns a copy of the channel's log at call time. Unknown keys read as
// an empty log, not an error.
func (s *Store) Read(channelKey string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.channels[channelKey]
	out := make([]Message, len(log))
	copy(out, log)
	return out
}

// Len returns the current length of the channel's log.
func (s *Store) Len(channelKey string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.channels[channelKey])
}

// Channels returns the known channel keys in sorted order.
func (s *Store) Channels() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.channels))
	for k := range s.channels {
		out = append(out, k)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Signal returns a channel that is closed on the next append to any channel.
func (s *Store) Signal() <-chan struct{} {
	s.mu.RLock()
	ch := s.notifyCh
	s.mu.RUnlock()
	return ch
}

// WaitForAppend blocks until either an append occurs or timeout elapses. It
// returns true if woken by an append, false on timeout.
func (s *Store) WaitForAppend(timeout time.Duration) bool {
	ch := s.Signal()
	if timeout <= 0 {
		<-ch
		return true
	}
	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	}
}
