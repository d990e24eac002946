package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fumin/embedci/store"
)

func newSeedCmd() *cobra.Command {
	var db string
	var u float64
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a demo dataset of two Hubbard dimer impurities, the second with a Mott constraint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			st, err := store.Open(db)
			if err != nil {
				return errors.Wrap(err, "")
			}
			defer st.Close()

			if err := seedDimer(ctx, st, 1, u, false); err != nil {
				return errors.Wrap(err, "")
			}
			if err := seedDimer(ctx, st, 2, u, true); err != nil {
				return errors.Wrap(err, "")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s\n", db)
			return nil
		},
	}
	cmd.Flags().StringVar(&db, "db", "embedci.db", "dataset database")
	cmd.Flags().Float64Var(&u, "u", 4, "Hubbard interaction")
	return cmd
}
