package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	baseURL string
	timeout time.Duration
	token   string
	owner   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "fintrack-cli",
		Short:         "Fintrack CLI tool",
		Long:          `A command line interface for interacting with the Fintrack ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("FINTRACK_URL", "http://localhost:8080"), "Base URL of the Fintrack API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("FINTRACK_TOKEN"), "Bearer token (servers with auth enabled)")
	rootCmd.PersistentFlags().StringVar(&opts.owner, "owner", os.Getenv("FINTRACK_OWNER"), "Owner id sent as X-Owner-ID (servers with auth disabled)")

	rootCmd.AddCommand(
		accountsCmd(opts),
		transactionsCmd(opts),
		summaryCmd(opts),
		ledgerCmd(opts),
		tokenCmd(),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
