package client

import (
	"github.com/spf13/cobra"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// NewRoot constructs a root Cobra command for the tern client.
// It registers the chat, channels and token command groups.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "tern",
		Short: "Tern client commands",
	}
	root.AddCommand(NewChatCommand(baseURL))
	root.AddCommand(NewChannelsCommand(baseURL))
	root.AddCommand(NewTokenCommand(baseURL))
	return root
}
