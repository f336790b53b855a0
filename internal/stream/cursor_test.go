package stream

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestCursorRoundTrip(t *testing.T) {
	for _, pos := range []int{0, 1, 3, 42, 1 << 20} {
		tok := EncodeCursor(pos)
		got, err := DecodeCursor(tok)
		if err != nil {
			t.Fatalf("decode(%q): %v", tok, err)
		}
		if got != pos {
			t.Fatalf("round trip broke: %d -> %q -> %d", pos, tok, got)
		}
	}
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	bad := []string{
		"!!!not-base64!!!",
		base64.StdEncoding.EncodeToString([]byte("abc")),
		base64.StdEncoding.EncodeToString([]byte("-1")),
		base64.StdEncoding.EncodeToString([]byte("1.5")),
		base64.StdEncoding.EncodeToString([]byte("")),
	}
	for _, tok := range bad {
		if _, err := DecodeCursor(tok); !errors.Is(err, ErrInvalidCursor) {
			t.Fatalf("decode(%q): want ErrInvalidCursor, got %v", tok, err)
		}
	}
}

func TestDecodeCursorAllowsPastTail(t *testing.T) {
	// A cursor past the current tail is the normal caught-up state.
	pos, err := DecodeCursor(EncodeCursor(9999))
	if err != nil || pos != 9999 {
		t.Fatalf("want 9999, got %d (%v)", pos, err)
	}
}
