package cli

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the local report cache",
	}
	cmd.AddCommand(newCacheStatsCmd(), newCacheClearCmd())
	return cmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show entry count and disk usage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			st, err := openStore(cmd, cfg)
			if err != nil {
				return err
			}

			count, bytes, err := st.Stats()
			if err != nil {
				return err
			}
			cmd.Printf("directory: %s\n", st.Dir())
			cmd.Printf("entries:   %s\n", humanize.Comma(int64(count)))
			cmd.Printf("size:      %s\n", humanize.Bytes(uint64(bytes)))
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached entry",
		Long: "Deletes every cached report. Cached data never expires on its own\n" +
			"(historical prices are immutable), so this is the only way to reclaim\n" +
			"the disk space or force re-fetching.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			st, err := openStore(cmd, cfg)
			if err != nil {
				return err
			}

			count, bytes, err := st.Stats()
			if err != nil {
				return err
			}
			if err := st.Clear(); err != nil {
				return err
			}
			cmd.Printf("removed %s entries (%s)\n",
				humanize.Comma(int64(count)), humanize.Bytes(uint64(bytes)))
			return nil
		},
	}
}
