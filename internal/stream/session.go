package stream

import (
	"context"
	"time"

	"github.com/ternhq/tern/internal/chatlog"
	logpkg "github.com/ternhq/tern/pkg/log"
)

// Engine creates delivery sessions over a shared store. Sessions are
// independent: they share nothing but the store itself.
type Engine struct {
	store        *chatlog.Store
	logger       logpkg.Logger
	pollInterval time.Duration
	sessionTTL   time.Duration
	buffer       int
}

// NewEngine returns an Engine over store.
func NewEngine(store *chatlog.Store, logger logpkg.Logger, opts Options) *Engine {
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel))
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Engine{
		store:        store,
		logger:       logger,
		pollInterval: interval,
		sessionTTL:   opts.SessionTTL,
		buffer:       buffer,
	}
}

// Attach validates req and starts one delivery session. The returned channel
// is owned by the session and closed when it terminates: on ctx cancellation
// (client disconnect) or on the engine's session TTL elapsing. Every accepted
// attach yields at least one event before any termination.
func (e *Engine) Attach(ctx context.Context, req AttachRequest) (<-chan Event, error) {
	if req.ChannelKey == "" {
		return nil, ErrMissingChannel
	}
	pos := 0
	if req.PageToken != "" {
		p, err := DecodeCursor(req.PageToken)
		if err != nil {
			return nil, err
		}
		pos = p
	}
	filter, err := newMessageFilter(req.Filter)
	if err != nil {
		return nil, err
	}

	s := &session{
		store:    e.store,
		logger:   e.logger,
		channel:  req.ChannelKey,
		pos:      pos,
		interval: e.pollInterval,
		filter:   filter,
		out:      make(chan Event, e.buffer),
	}
	if e.sessionTTL > 0 {
		s.deadline = time.Now().Add(e.sessionTTL)
	}
	e.logger.Debug("stream.attach",
		logpkg.Str("channel", s.channel),
		logpkg.Int("position", s.pos),
		logpkg.Bool("filtered", req.Filter != ""),
	)
	go s.run(ctx)
	return s.out, nil
}

// session is the live state of one attachment. It is owned entirely by its
// goroutine; only the store is shared.
type session struct {
	store    *chatlog.Store
	logger   logpkg.Logger
	channel  string
	pos      int
	deadline time.Time // zero means unbounded
	interval time.Duration
	filter   messageFilter
	out      chan Event
}

// run drives the polling loop: snapshot the log, emit everything past the
// session position with a per-message resume cursor, send a single heartbeat
// if nothing has ever been emitted, then sleep until the next append or one
// poll interval, whichever comes first.
func (s *session) run(ctx context.Context) {
	defer close(s.out)
	sentAny := false
	for {
		snapshot := s.store.Read(s.channel)
		emitted := 0
		for i := s.pos; i < len(snapshot); i++ {
			msg := snapshot[i]
			if !s.filter.Match(msg) {
				// skipped messages still advance the cursor
				s.pos = i + 1
				continue
			}
			select {
			case s.out <- Event{Message: &msg, Cursor: EncodeCursor(i + 1)}:
			case <-ctx.Done():
				s.end("disconnect")
				return
			}
			s.pos = i + 1
			sentAny = true
			emitted++
		}
		if emitted == 0 && !sentAny {
			// Exactly one heartbeat per attach, so the client always learns a
			// cursor even on an empty channel.
			select {
			case s.out <- Event{Cursor: EncodeCursor(s.pos)}:
			case <-ctx.Done():
				s.end("disconnect")
				return
			}
			sentAny = true
		}
		if emitted > 0 {
			s.logger.Debug("stream.deliver",
				logpkg.Str("channel", s.channel),
				logpkg.Int("batch", emitted),
				logpkg.Int("position", s.pos),
			)
		}
		if !s.deadline.IsZero() && !time.Now().Before(s.deadline) {
			s.end("deadline")
			return
		}
		select {
		case <-ctx.Done():
			s.end("disconnect")
			return
		case <-s.store.Signal():
		case <-time.After(s.interval):
		}
	}
}

func (s *session) end(reason string) {
	s.logger.Debug("stream.close",
		logpkg.Str("channel", s.channel),
		logpkg.Int("position", s.pos),
		logpkg.Str("reason", reason),
	)
}
