package chatlog

import (
	"fmt"
	"time"
)

// SeedChannel is the channel populated by Seed.
const SeedChannel = "demo"

var seedAuthors = []string{"ada", "grace", "linus", "barbara", "dennis"}

var seedLines = []string{
	"hello from the demo channel",
	"anyone else watching this live?",
	"the stream quality is great today",
	"first time here, this is fun",
	"see you all tomorrow",
}

// Seed populates a handful of demo messages so a fresh server has something to
// stream before any producer connects.
func Seed(s *Store) {
	base := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := range seedLines {
		s.Append(SeedChannel, Message{
			ID:          fmt.Sprintf("msg-id-%d", i),
			ChannelKey:  SeedChannel,
			AuthorID:    fmt.Sprintf("author-id-%d", i),
			AuthorName:  seedAuthors[i%len(seedAuthors)],
			Text:        seedLines[i],
			PublishedAt: base,
			Verified:    true,
		})
	}
}
