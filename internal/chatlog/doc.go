// Package chatlog holds the in-memory, append-ordered chat message store
// shared by producers and delivery sessions.
package chatlog
