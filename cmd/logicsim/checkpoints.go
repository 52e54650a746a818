// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/db47h/logicsim/store"
)

func openStore(ctx context.Context, o *globalOptions) (store.Store, error) {
	st, err := store.NewStore(o.storeKind, o.storePath)
	if err != nil {
		return nil, err
	}
	if err = st.Init(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

func newCheckpointsCmd(o *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoints",
		Short: "List saved checkpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context(), o)
			if err != nil {
				return err
			}
			defer store.CloseIfSupported(st)
			l, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTIME\tCREATED")
			for _, i := range l {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", i.ID, i.Name, humanize.Comma(int64(i.Time)), humanize.Time(i.Created))
			}
			return w.Flush()
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID...",
		Short: "Delete checkpoints",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context(), o)
			if err != nil {
				return err
			}
			defer store.CloseIfSupported(st)
			for _, id := range args {
				if err = st.Delete(cmd.Context(), id); err != nil {
					return err
				}
			}
			return nil
		},
	})
	return cmd
}
