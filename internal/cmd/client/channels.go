package client

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

// NewChannelsCommand constructs the `channels` command group.
func NewChannelsCommand(baseURL BaseURLFunc) *cobra.Command {
	channelsCmd := &cobra.Command{Use: "channels", Short: "Channel operations"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List channels and their message counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := http.Get(baseURL() + "/v1/channels")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			out, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("list failed: %s: %s", resp.Status, strings.TrimSpace(string(out)))
			}
			fmt.Println(strings.TrimSpace(string(out)))
			return nil
		},
	}
	channelsCmd.AddCommand(listCmd)
	return channelsCmd
}
