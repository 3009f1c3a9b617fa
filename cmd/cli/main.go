package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	baseURL string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "gobank-cli",
		Short:         "GoBank CLI tool",
		Long:          `A command line interface for operating the GoBank API and its database schema.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("GOBANK_URL", "http://localhost:8080"), "Base URL of the GoBank API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 40*time.Second, "Request timeout")

	rootCmd.AddCommand(
		accountCmd(opts),
		depositCmd(opts),
		withdrawCmd(opts),
		transferCmd(opts),
		recordsCmd(opts),
		limitsCmd(opts),
		migrateCmd(),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
