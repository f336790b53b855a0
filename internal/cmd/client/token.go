package client

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewTokenCommand constructs the `token` command group for the mock OAuth
// endpoint.
func NewTokenCommand(baseURL BaseURLFunc) *cobra.Command {
	tokenCmd := &cobra.Command{Use: "token", Short: "Token operations"}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Mint an access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			scope, _ := cmd.Flags().GetString("scope")
			ttlSecs, _ := cmd.Flags().GetInt64("ttl-secs")

			form := url.Values{"grant_type": {"authorization_code"}}
			if scope != "" {
				form.Set("scope", scope)
			}
			if cmd.Flags().Changed("ttl-secs") {
				form.Set("ttl_secs", strconv.FormatInt(ttlSecs, 10))
			}
			return postTokenForm(baseURL, form)
		},
	}
	createCmd.Flags().String("scope", "", "Token scope (default chat.readonly)")
	createCmd.Flags().Int64("ttl-secs", 3600, "Token lifetime in seconds (negative mints an expired token)")
	tokenCmd.AddCommand(createCmd)

	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Exchange a refresh token for a new access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, _ := cmd.Flags().GetString("refresh-token")
			ttlSecs, _ := cmd.Flags().GetInt64("ttl-secs")

			form := url.Values{"grant_type": {"refresh_token"}, "refresh_token": {rt}}
			if cmd.Flags().Changed("ttl-secs") {
				form.Set("ttl_secs", strconv.FormatInt(ttlSecs, 10))
			}
			return postTokenForm(baseURL, form)
		},
	}
	refreshCmd.Flags().String("refresh-token", "", "Refresh token from a previous grant")
	refreshCmd.Flags().Int64("ttl-secs", 3600, "New token lifetime in seconds")
	_ = refreshCmd.MarkFlagRequired("refresh-token")
	tokenCmd.AddCommand(refreshCmd)

	return tokenCmd
}

func postTokenForm(baseURL BaseURLFunc, form url.Values) error {
	resp, err := http.PostForm(baseURL()+"/v1/oauth/token", form)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token request failed: %s: %s", resp.Status, strings.TrimSpace(string(out)))
	}
	fmt.Println(strings.TrimSpace(string(out)))
	return nil
}
