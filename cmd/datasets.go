package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var datasetsLimit int

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List ingested datasets",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		loads, err := s.ListLoads(ctx, datasetsLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LOADED AT\tSOURCE\tFORMAT\tROWS\tCOERCED\tID")
		for _, l := range loads {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
				l.LoadedAt.Format("2006-01-02 15:04"), l.SourceFile, l.Format,
				l.Rows, l.CoercionFallbacks, l.ID)
		}
		return w.Flush()
	},
}

func init() {
	datasetsCmd.Flags().IntVar(&datasetsLimit, "limit", 20, "maximum datasets to list")
	rootCmd.AddCommand(datasetsCmd)
}
