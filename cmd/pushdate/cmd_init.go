package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/pushdate/pkg/config"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.configPath); err == nil {
				return fmt.Errorf("init: %s already exists", a.configPath)
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("init: %w", err)
			}

			cfg := config.Default()
			cfg.Repository = a.cfg.Repository
			if err := config.Write(a.configPath, cfg); err != nil {
				return err
			}
			if err := os.MkdirAll(a.cfg.Store, 0o755); err != nil {
				return fmt.Errorf("init: create store: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", a.configPath)
			return nil
		},
	}
}
