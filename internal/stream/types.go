package stream

import (
	"time"

	"github.com/ternhq/tern/internal/chatlog"
)

// AttachRequest carries the parameters of one client attachment.
type AttachRequest struct {
	// ChannelKey selects the log to stream. Required.
	ChannelKey string
	// PageToken resumes from a previously delivered cursor. Empty means start
	// from the beginning of the log.
	PageToken string
	// Filter is an optional CEL expression evaluated per message. Messages it
	// rejects are skipped but still advance the cursor.
	Filter string
}

// Event is one unit delivered to a client: a message plus the token to resume
// after it, or a heartbeat (nil Message) carrying the unchanged token.
type Event struct {
	Message *chatlog.Message
	Cursor  string
}

// Heartbeat reports whether the event carries no message.
func (e Event) Heartbeat() bool { return e.Message == nil }

// Options tunes the engine. Zero values fall back to defaults.
type Options struct {
	// PollInterval bounds how long an idle session sleeps between log reads.
	// Appends wake sessions early. Default one second.
	PollInterval time.Duration
	// SessionTTL bounds a session's wall-clock lifetime. Zero means unbounded.
	SessionTTL time.Duration
	// Buffer is the capacity of each session's output channel. A consumer that
	// stops draining throttles only its own session. Default 4.
	Buffer int
}

const (
	defaultPollInterval = time.Second
	defaultBuffer       = 4
)
