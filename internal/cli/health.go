package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/mindroll/internal/model"
)

// HealthResult is the ops health response
type HealthResult struct {
	Status string `json:"status"`
}

func newHealthCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HealthResult
			if err := NewOpsClient(cfg.OpsURL, cfg.Timeout).Get("/api/v1/health", &result); err != nil {
				return err
			}

			NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
			return nil
		},
	}
}

func newRoomsCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List the server's rooms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rooms []model.RoomSummary
			if err := NewOpsClient(cfg.OpsURL, cfg.Timeout).Get("/api/v1/rooms", &rooms); err != nil {
				return err
			}

			NewOutput(cmd.OutOrStdout(), cfg.Output).Print(rooms)
			return nil
		},
	}
}
