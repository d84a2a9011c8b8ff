package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/pushdate/pkg/object"
)

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify the integrity of the commit object store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := object.NewStore(a.cfg.Store).Verify()
			if err != nil {
				return err
			}
			if summary.MissingParents > 0 {
				a.logger.Info("store is shallow", "missing_parents", summary.MissingParents)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: verified %d commit(s), %d missing parent(s)\n",
				summary.Commits, summary.MissingParents)
			return nil
		},
	}
}
