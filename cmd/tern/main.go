package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	clientcmd "github.com/ternhq/tern/internal/cmd/client"
	serverrun "github.com/ternhq/tern/internal/cmd/server"
	cfgpkg "github.com/ternhq/tern/internal/config"
	logpkg "github.com/ternhq/tern/pkg/log"
)

func main() {
	// Respect TERN_LOG_LEVEL for CLI output
	level := os.Getenv("TERN_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "tern",
		Short: "Tern chat server CLI",
		Long:  "Tern is a single-binary live chat delivery server. This CLI manages the server and basic operations.",
	}

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start tern server (HTTP API, SSE and WebSocket streaming)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			httpAddr, _ := cmd.Flags().GetString("http")
			requireAuth, _ := cmd.Flags().GetBool("require-auth")
			authMode, _ := cmd.Flags().GetString("auth-mode")
			streamTimeout, _ := cmd.Flags().GetInt("stream-timeout")
			pollIntervalMs, _ := cmd.Flags().GetInt("poll-interval-ms")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")
			seed, _ := cmd.Flags().GetBool("seed")

			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfgpkg.FromEnv(&cfg)
			// Flags win over file and env.
			if cmd.Flags().Changed("http") {
				cfg.HTTPAddr = httpAddr
			}
			if cmd.Flags().Changed("require-auth") {
				cfg.RequireAuth = requireAuth
			}
			if cmd.Flags().Changed("auth-mode") {
				cfg.AuthMode = authMode
			}
			if cmd.Flags().Changed("stream-timeout") {
				cfg.StreamTimeoutSecs = streamTimeout
			}
			if cmd.Flags().Changed("poll-interval-ms") {
				cfg.PollIntervalMillis = pollIntervalMs
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat = logFormat
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := serverrun.Run(ctx, serverrun.Options{Config: cfg}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	serverStartCmd.Flags().String("config", "", "Config file path (JSON or YAML)")
	serverStartCmd.Flags().String("http", ":8080", "HTTP listen address")
	serverStartCmd.Flags().Bool("require-auth", false, "Require a credential to attach to streams")
	serverStartCmd.Flags().String("auth-mode", cfgpkg.AuthModePresence, "Auth mode: presence|verify")
	serverStartCmd.Flags().Int("stream-timeout", 0, "Stream session lifetime in seconds (0 = unbounded)")
	serverStartCmd.Flags().Int("poll-interval-ms", 1000, "Delivery poll interval in ms")
	serverStartCmd.Flags().String("log-level", os.Getenv("TERN_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("TERN_LOG_FORMAT"), "Log format: text|json (default text)")
	serverStartCmd.Flags().Bool("seed", false, "Seed the demo channel with sample messages")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	// client command groups
	rootCmd.AddCommand(clientcmd.NewChatCommand(apiURL))
	rootCmd.AddCommand(clientcmd.NewChannelsCommand(apiURL))
	rootCmd.AddCommand(clientcmd.NewTokenCommand(apiURL))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func apiURL() string {
	if v := os.Getenv("TERN_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
