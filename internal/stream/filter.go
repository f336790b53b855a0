package stream

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/ternhq/tern/internal/chatlog"
)

// messageFilter wraps a compiled CEL program evaluated once per message. When
// no expression is configured, Match always returns true.
type messageFilter struct {
	prog    cel.Program
	enabled bool
}

func newMessageFilter(expr string) (messageFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return messageFilter{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("channel", cel.StringType),
		cel.Variable("author_id", cel.StringType),
		cel.Variable("author_name", cel.StringType),
		cel.Variable("text", cel.StringType),
		cel.Variable("verified", cel.BoolType),
		cel.Variable("published_ms", cel.IntType),
	)
	if err != nil {
		return messageFilter{}, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return messageFilter{}, fmt.Errorf("%w: %v", ErrBadFilter, iss.Err())
	}
	prog, err := env.Program(ast)
	if err != nil {
		return messageFilter{}, fmt.Errorf("%w: %v", ErrBadFilter, err)
	}
	return messageFilter{prog: prog, enabled: true}, nil
}

// Match evaluates the expression against m. Evaluation errors and non-boolean
// results reject the message rather than failing the session.
func (f messageFilter) Match(m chatlog.Message) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"channel":      m.ChannelKey,
		"author_id":    m.AuthorID,
		"author_name":  m.AuthorName,
		"text":         m.Text,
		"verified":     m.Verified,
		"published_ms": m.PublishedAt.UnixMilli(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
