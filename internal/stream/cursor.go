package stream

import (
	"encoding/base64"
	"fmt"
	"strconv"
)

// EncodeCursor renders a log position as an opaque resume token. The token is
// an implementation encoding, not a wire contract; clients must treat it as a
// black box.
func EncodeCursor(pos int) string {
	return base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(pos)))
}

// DecodeCursor parses a resume token back into a log position. Tokens that do
// not decode to a non-negative integer fail with ErrInvalidCursor. A position
// past the current tail is valid; it is the normal caught-up state. Absent
// tokens are the caller's case and never reach here.
func DecodeCursor(tok string) (int, error) {
	raw, err := base64.StdEncoding.DecodeString(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCursor, tok)
	}
	pos, err := strconv.Atoi(string(raw))
	if err != nil || pos < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCursor, tok)
	}
	return pos, nil
}
