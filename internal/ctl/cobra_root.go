package ctl

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// BuildRootCmd constructs the notifyctl command tree with env defaults.
func BuildRootCmd() *cobra.Command { return buildRootCmdWith(DefaultConfig()) }

// buildRootCmdWith constructs a Cobra command tree wired to the fn* actions.
func buildRootCmdWith(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "notifyctl",
		Short:         "Client for the notifyd notification broker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags -> Config
	root.PersistentFlags().String("addr", cfg.Addr, "notifyd base URL (defaults NOTIFYD_ADDR or http://127.0.0.1:8080)")
	root.PersistentFlags().String("log-level", cfg.LogLvl, "Log level: debug|info|warn|error (defaults NOTIFYCTL_LOG_LEVEL or info)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if f := cmd.InheritedFlags().Lookup("addr"); f != nil {
			if v := f.Value.String(); v != "" {
				cfg.Addr = v
			}
		}
		if f := cmd.InheritedFlags().Lookup("log-level"); f != nil {
			if v := f.Value.String(); v != "" {
				cfg.LogLvl = v
			}
		}
		SetLogLevel(cfg.LogLvl)
	}

	topicsCmd := &cobra.Command{Use: "topics", Short: "List topics with subscriber counts", Example: "  notifyctl topics", RunE: func(cmd *cobra.Command, args []string) error {
		return fnTopics(cfg, cmd.OutOrStdout())
	}}
	statusCmd := &cobra.Command{Use: "status", Short: "Show broker status", Example: "  notifyctl status", RunE: func(cmd *cobra.Command, args []string) error {
		return fnStatus(cfg, cmd.OutOrStdout())
	}}
	publishCmd := &cobra.Command{Use: "publish <topic> [payload]", Short: "Publish an event (omit payload for a signal-only notification)", Example: "  notifyctl publish orders '{\"id\":1}'\n  notifyctl publish orders", Args: cobra.RangeArgs(1, 2), RunE: func(cmd *cobra.Command, args []string) error {
		payload := ""
		if len(args) == 2 {
			payload = args[1]
		}
		return fnPublish(cfg, args[0], payload, cmd.OutOrStdout())
	}}
	latestCmd := &cobra.Command{Use: "latest <topic>", Short: "Fetch the latest event on a topic (pull model)", Example: "  notifyctl latest orders", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		return fnLatest(cfg, args[0], cmd.OutOrStdout())
	}}
	subscribeCmd := &cobra.Command{Use: "subscribe <topic>", Short: "Stream events from a topic until interrupted", Example: "  notifyctl subscribe orders", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return fnSubscribe(ctx, cfg, args[0], cmd.OutOrStdout())
	}}

	root.AddCommand(topicsCmd, statusCmd, publishCmd, latestCmd, subscribeCmd)
	return root
}

// Main is the entry point used by cmd/notifyctl.
func Main() {
	if err := BuildRootCmd().Execute(); err != nil {
		logf("error", levelError, "%v", err)
		os.Exit(1)
	}
}
