package client

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// NewChatCommand constructs the `chat` command group and subcommands.
func NewChatCommand(baseURL BaseURLFunc) *cobra.Command {
	chatCmd := &cobra.Command{Use: "chat", Short: "Chat operations"}

	chatCmd.AddCommand(
		newChatPublishCommand(baseURL),
		newChatStreamCommand(baseURL),
		newChatGenerateCommand(baseURL),
	)

	return chatCmd
}

func newChatPublishCommand(baseURL BaseURLFunc) *cobra.Command {
	publishCmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a message to a channel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			channel, _ := cmd.Flags().GetString("channel")
			authorID, _ := cmd.Flags().GetString("author-id")
			authorName, _ := cmd.Flags().GetString("author-name")
			text, _ := cmd.Flags().GetString("text")
			verified, _ := cmd.Flags().GetBool("verified")

			body := map[string]any{
				"channel_key": channel,
				"author_id":   authorID,
				"author_name": authorName,
				"text":        text,
				"verified":    verified,
			}
			b, _ := json.Marshal(body)
			resp, err := http.Post(baseURL()+"/v1/chat/messages", "application/json", bytes.NewReader(b))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			out, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusCreated {
				return fmt.Errorf("publish failed: %s: %s", resp.Status, strings.TrimSpace(string(out)))
			}
			fmt.Println(strings.TrimSpace(string(out)))
			return nil
		},
	}
	publishCmd.Flags().String("channel", "demo", "Channel key")
	publishCmd.Flags().String("author-id", "", "Author id")
	publishCmd.Flags().String("author-name", "", "Author display name")
	publishCmd.Flags().String("text", "", "Message text")
	publishCmd.Flags().Bool("verified", false, "Mark the author as verified")
	_ = publishCmd.MarkFlagRequired("text")
	return publishCmd
}

func newChatStreamCommand(baseURL BaseURLFunc) *cobra.Command {
	streamCmd := &cobra.Command{
		Use:   "stream",
		Short: "Stream a channel's messages over SSE",
		RunE: func(cmd *cobra.Command, _ []string) error {
			channel, _ := cmd.Flags().GetString("channel")
			pageToken, _ := cmd.Flags().GetString("page-token")
			filter, _ := cmd.Flags().GetString("filter")
			key, _ := cmd.Flags().GetString("key")
			bearer, _ := cmd.Flags().GetString("bearer")

			q := url.Values{"channel": {channel}}
			if pageToken != "" {
				q.Set("page_token", pageToken)
			}
			if filter != "" {
				q.Set("filter", filter)
			}
			if key != "" {
				q.Set("key", key)
			}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet,
				baseURL()+"/v1/chat/stream?"+q.Encode(), nil)
			if err != nil {
				return err
			}
			if bearer != "" {
				req.Header.Set("Authorization", "Bearer "+bearer)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				out, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("stream failed: %s: %s", resp.Status, strings.TrimSpace(string(out)))
			}

			r := bufio.NewReader(resp.Body)
			for {
				line, err := r.ReadString('\n')
				if err != nil {
					if err == io.EOF || cmd.Context().Err() != nil {
						return nil
					}
					return err
				}
				line = strings.TrimRight(line, "\n")
				if strings.HasPrefix(line, "data: ") {
					fmt.Println(strings.TrimPrefix(line, "data: "))
				}
			}
		},
	}
	streamCmd.Flags().String("channel", "demo", "Channel key")
	streamCmd.Flags().String("page-token", "", "Resume token from a previous event")
	streamCmd.Flags().String("filter", "", "CEL filter expression, e.g. 'verified == true'")
	streamCmd.Flags().String("key", "", "API key credential")
	streamCmd.Flags().String("bearer", "", "Bearer token credential")
	return streamCmd
}

func newChatGenerateCommand(baseURL BaseURLFunc) *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic messages on a channel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			channel, _ := cmd.Flags().GetString("channel")
			count, _ := cmd.Flags().GetInt("count")

			body := map[string]any{"channel_key": channel, "count": count}
			b, _ := json.Marshal(body)
			resp, err := http.Post(baseURL()+"/v1/chat/messages/generate", "application/json", bytes.NewReader(b))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			out, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusCreated {
				return fmt.Errorf("generate failed: %s: %s", resp.Status, strings.TrimSpace(string(out)))
			}
			fmt.Println(strings.TrimSpace(string(out)))
			return nil
		},
	}
	generateCmd.Flags().String("channel", "demo", "Channel key")
	generateCmd.Flags().Int("count", 1, "Number of messages to generate (max 100)")
	return generateCmd
}
