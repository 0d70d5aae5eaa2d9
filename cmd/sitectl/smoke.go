package main

import (
	"os"
	"runtime"
	"time"

	"github.com/h2hmarketing/site/internal/sitecheck"
	"github.com/h2hmarketing/site/pkg/logger"
	"github.com/spf13/cobra"
)

// Default smoke configuration.
const (
	defaultContacts = 50
	defaultReplays  = 10
	defaultWorkers  = 2 // multiplier for runtime.NumCPU()
	defaultTimeout  = 30 * time.Second
)

func newSmokeCmd() *cobra.Command {
	cfg := &sitecheck.Config{}
	var logFile string
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Exercise a running server end to end",
		Long:  "Check every page route, submit contacts with replayed idempotency keys, run scripted chats and compare against /stats.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			closer, err := sitecheck.SetupLogging(cmd.OutOrStdout(), logFile)
			if err != nil {
				return err
			}
			defer closer.Close()
			if cfg.Verbose {
				_ = logger.SetLevelString("debug")
			}
			_, err = sitecheck.Run(cmd.Context(), logger.Named("smoke"), cfg)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "Base URL of the service")
	f.IntVar(&cfg.Contacts, "contacts", defaultContacts, "Number of contact submissions")
	f.IntVar(&cfg.Replays, "replays", defaultReplays, "Submissions resent with a used idempotency key")
	f.IntVar(&cfg.Chats, "chats", len(sitecheck.Questions), "Number of chat sessions")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
	f.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	f.DurationVar(&cfg.ReplyWait, "reply-wait", sitecheck.DefaultReplyWait, "How long to wait for each assistant reply")
	f.StringVarP(&cfg.OutputFile, "output", "o", "", "Write a YAML report to this file")
	f.StringVar(&logFile, "log", os.Getenv("SITE_SMOKE_LOG"), "Also append logs to this file")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable verbose logging")
	return cmd
}
