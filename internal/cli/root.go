package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/mindroll/internal/client"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg := DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "mindroll",
		Short: "Terminal client for the MindRoll dice-calling game",
		Long: `mindroll is a terminal client for a MindRoll server.

Register and log in once, then use 'mindroll play' to create or join rooms
and play over a single connection. 'health' and 'rooms' query the server's
ops HTTP endpoints.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerAddr, "server", cfg.ServerAddr, "RPC server address (env: MINDROLL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.OpsURL, "ops-url", cfg.OpsURL, "Ops HTTP base URL (env: MINDROLL_OPS_URL)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Session file path (env: MINDROLL_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout")

	// Add subcommands
	rootCmd.AddCommand(newRegisterCmd(cfg))
	rootCmd.AddCommand(newLoginCmd(cfg))
	rootCmd.AddCommand(newPlayCmd(cfg))
	rootCmd.AddCommand(newHealthCmd(cfg))
	rootCmd.AddCommand(newRoomsCmd(cfg))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// dial opens an RPC connection bounded by the configured timeout
func dial(ctx context.Context, cfg *Config) (*client.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	return client.Dial(ctx, cfg.ServerAddr)
}
