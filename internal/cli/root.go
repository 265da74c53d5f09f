// Package cli implements the mmnq command tree. The CLI is a thin caller
// over the mmn client: it resolves configuration, wires the filesystem
// store and the MARS source together, runs one query and prints the rows.
package cli

import (
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/openproduce/mmn"
	zladapter "github.com/openproduce/mmn/log/zerolog"
	"github.com/openproduce/mmn/marsapi"
	"github.com/openproduce/mmn/quota"
	"github.com/openproduce/mmn/store/fs"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger

// NewRootCmd builds the mmnq root command and its subcommands.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mmnq",
		Short:   "Query USDA Market News produce prices with a local cache",
		Long: "mmnq fetches terminal-market produce price reports from the USDA MARS API\n" +
			"and caches every result locally, so repeated queries for historical data\n" +
			"cost neither time nor daily API quota.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := zerolog.InfoLevel
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				level = zerolog.DebugLevel
			}
			logger = zerolog.New(zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: time.RFC3339,
			}).Level(level).With().Timestamp().Logger()
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "config file (default: user config dir /mmnq/config.yaml)")
	cmd.PersistentFlags().String("cache-dir", "", "cache directory (default: user cache dir /mmn)")

	cmd.AddCommand(newPricesCmd(), newMarketsCmd(), newCommoditiesCmd(), newCacheCmd())
	return cmd
}

// openStore resolves the cache directory with flag > config > default
// precedence and opens the filesystem store.
func openStore(cmd *cobra.Command, cfg Config) (*fs.Store, error) {
	dir, _ := cmd.Flags().GetString("cache-dir")
	if dir == "" {
		dir = cfg.CacheDir
	}
	if dir == "" {
		d, ok := fs.DefaultDir()
		if !ok {
			return nil, errors.New("no cache directory could be resolved; pass --cache-dir")
		}
		dir = d
	}
	return fs.New(dir)
}

// newClient assembles the full stack: config, store, MARS source, client.
func newClient(cmd *cobra.Command) (mmn.Client, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	st, err := openStore(cmd, cfg)
	if err != nil {
		return nil, err
	}

	src, err := marsapi.New(marsapi.Config{
		APIKey: cfg.APIKey,
		Logger: zladapter.Logger{L: logger},
	})
	if err != nil {
		return nil, err
	}

	opts := mmn.Options{
		Store:  st,
		Source: src,
		Logger: zladapter.Logger{L: logger},
	}
	if cfg.DailyLimit > 0 {
		opts.Quota = quota.NewLocal(0, 0)
		opts.DailyLimit = cfg.DailyLimit
	}
	return mmn.New(opts)
}

// fail prints a classified, actionable message and returns err for cobra.
func fail(cmd *cobra.Command, err error) error {
	switch {
	case mmn.IsAuth(err):
		cmd.PrintErrln("Error: the MARS API rejected your key; check", EnvAPIKey)
	case mmn.IsQuota(err):
		cmd.PrintErrln("Error: daily request quota exhausted; retry tomorrow or serve from cache")
	case mmn.IsTransient(err):
		cmd.PrintErrln("Error: the MARS API is unreachable right now; retry shortly")
	default:
		cmd.PrintErrln("Error:", err)
		return err
	}
	cmd.PrintErrln(" ", err)
	return err
}

// warnIfStorage tells the user their data arrived but was not cached.
func warnIfStorage(cmd *cobra.Command, err error) {
	var serr *mmn.StorageError
	if errors.As(err, &serr) {
		cmd.PrintErrf("Warning: result was fetched but not cached: %v\n", serr)
	}
}
