package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newRegisterCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "register <username> <password>",
		Short: "Register a new account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
			defer cancel()

			msg, err := c.Register(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			NewOutput(cmd.OutOrStdout(), cfg.Output).PrintMessage(msg)
			return nil
		},
	}
}

func newLoginCmd(cfg *Config) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Log in and save the session token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ttl < 0 || ttl%time.Second != 0 {
				return fmt.Errorf("--ttl must be a positive whole number of seconds")
			}

			c, err := dial(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
			defer cancel()

			token, err := c.Login(ctx, args[0], args[1], ttl)
			if err != nil {
				return err
			}

			session := Session{Username: args[0], Token: token}
			if err := cfg.SaveSession(session); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			NewOutput(cmd.OutOrStdout(), cfg.Output).Print(session)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (server default when unset)")

	return cmd
}
