package chatlog

import "time"

// Message is a single immutable chat entry. Identity is ID, but the store does
// not enforce uniqueness: producers may insert duplicates and the log keeps
// them in arrival order.
type Message struct {
	ID          string    `json:"id"`
	ChannelKey  string    `json:"channel_key"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	Text        string    `json:"text"`
	PublishedAt time.Time `json:"published_at"`
	Verified    bool      `json:"verified"`
}
