package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/garyellow/ut-course-catalog-go/internal/config"
	"github.com/garyellow/ut-course-catalog-go/internal/storage"
)

var purgeOpts struct {
	all    bool
	prefix string
}

func init() {
	purgeCmd.Flags().BoolVar(&purgeOpts.all, "all", false, "Remove every cached response")
	purgeCmd.Flags().StringVar(&purgeOpts.prefix, "prefix", "", "Remove cached responses whose URL starts with this prefix")
	purgeCmd.MarkFlagsMutuallyExclusive("all", "prefix")

	cacheCmd.AddCommand(statsCmd, purgeCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspects and cleans the response cache.",
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints response cache statistics.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openCacheOrFail(cmd)
		if err != nil {
			return err
		}
		stats, err := db.Stats(cmd.Context())
		if err != nil {
			return err
		}
		renderCacheStats(cmd.OutOrStdout(), db.Path(), stats)
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge [--all | --prefix <url>]",
	Short: "Removes expired (or selected) cached responses.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		db, err := openCacheOrFail(cmd)
		if err != nil {
			return err
		}

		var removed int64
		switch {
		case purgeOpts.all:
			removed, err = db.DeleteByPrefix(ctx, "")
		case purgeOpts.prefix != "":
			removed, err = db.DeleteByPrefix(ctx, purgeOpts.prefix)
		default:
			removed, err = db.DeleteExpired(ctx)
		}
		if err != nil {
			return err
		}

		env.log.WithModule("cache").InfoContext(ctx, "Cache purged", "removed", removed)
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached responses\n", removed)
		return nil
	},
}

func openCacheOrFail(cmd *cobra.Command) (*storage.DB, error) {
	db, err := env.openCache(cmd.Context())
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, fmt.Errorf("response cache is disabled by %s", config.EnvCacheEnabled)
	}
	return db, nil
}

func renderCacheStats(w io.Writer, path string, stats storage.CacheStats) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.AppendRows([]table.Row{
		{"path", path},
		{"entries", stats.Entries},
		{"expired", stats.Expired},
		{"raw bytes", stats.RawBytes},
		{"stored bytes", stats.StoredBytes},
	})
	t.Render()
}
