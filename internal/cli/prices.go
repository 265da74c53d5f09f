package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openproduce/mmn"
)

func newPricesCmd() *cobra.Command {
	var (
		commodity string
		market    string
		slug      string
		start     int
		end       int
	)

	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Fetch a price report for a commodity and market",
		Example: `  # one year of tomato prices from the Atlanta vegetables market
  mmnq prices --commodity Tomatoes --market "Atlanta vegetables" --start 2020

  # a range, addressed by slug id
  mmnq prices --commodity Peaches --slug 1058 --start 2018 --end 2020`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if slug == "" && market == "" {
				return errors.New("pass --slug or --market")
			}
			cli, err := newClient(cmd)
			if err != nil {
				return fail(cmd, err)
			}
			defer cli.Close(cmd.Context())

			rs, err := cli.Prices(cmd.Context(), mmn.Query{
				Commodity:  commodity,
				SlugID:     slug,
				MarketName: market,
				StartYear:  start,
				EndYear:    end,
			})
			if rs == nil {
				return fail(cmd, err)
			}
			warnIfStorage(cmd, err)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tCOMMODITY\tVARIETY\tPACKAGE\tORIGIN\tLOW\tHIGH")
			for _, r := range rs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\t%.2f\n",
					r.ReportDate, r.Commodity, r.Variety, r.Package, r.Origin, r.LowPrice, r.HighPrice)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			cmd.Printf("%d rows\n", len(rs))
			return nil
		},
	}

	cmd.Flags().StringVar(&commodity, "commodity", "", "commodity name as listed by MARS (empty = all)")
	cmd.Flags().StringVar(&market, "market", "", `proprietary market name, e.g. "Atlanta fruits"`)
	cmd.Flags().StringVar(&slug, "slug", "", "MARS slug id of the market")
	cmd.Flags().IntVar(&start, "start", 0, "start year (YYYY)")
	cmd.Flags().IntVar(&end, "end", 0, "end year (YYYY, default = start)")
	_ = cmd.MarkFlagRequired("start")
	cmd.MarkFlagsMutuallyExclusive("market", "slug")

	return cmd
}
