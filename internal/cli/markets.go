package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newMarketsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "markets",
		Short: "List terminal markets and their slug ids",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, err := newClient(cmd)
			if err != nil {
				return fail(cmd, err)
			}
			defer cli.Close(cmd.Context())

			ms, err := cli.Markets(cmd.Context())
			if ms == nil {
				return fail(cmd, err)
			}
			warnIfStorage(cmd, err)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SLUG\tMARKET")
			for _, m := range ms {
				fmt.Fprintf(w, "%s\t%s\n", m.SlugID, m.Name)
			}
			return w.Flush()
		},
	}
}

func newCommoditiesCmd() *cobra.Command {
	var (
		market string
		slug   string
	)

	cmd := &cobra.Command{
		Use:   "commodities",
		Short: "List commodities traded in a market",
		Long: "Lists the distinct commodities seen in the latest full year of a market's\n" +
			"data. The year of data is cached, so the first run costs one API request\n" +
			"and later runs cost none.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if slug == "" && market == "" {
				return errors.New("pass --slug or --market")
			}
			cli, err := newClient(cmd)
			if err != nil {
				return fail(cmd, err)
			}
			defer cli.Close(cmd.Context())

			if slug == "" {
				slug, err = cli.SlugID(cmd.Context(), market)
				if err != nil {
					return fail(cmd, err)
				}
			}

			list, err := cli.Commodities(cmd.Context(), slug)
			if list == nil {
				return fail(cmd, err)
			}
			warnIfStorage(cmd, err)

			for _, c := range list {
				cmd.Println(c)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&market, "market", "", `proprietary market name, e.g. "Atlanta fruits"`)
	cmd.Flags().StringVar(&slug, "slug", "", "MARS slug id of the market")
	cmd.MarkFlagsMutuallyExclusive("market", "slug")

	return cmd
}
