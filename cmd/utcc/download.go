package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/garyellow/ut-course-catalog-go/internal/archive"
	"github.com/garyellow/ut-course-catalog-go/internal/catalog"
	"github.com/garyellow/ut-course-catalog-go/internal/ctxutil"
	"github.com/garyellow/ut-course-catalog-go/internal/r2client"
	"github.com/garyellow/ut-course-catalog-go/internal/scraper/utokyo"
)

// progressEvery is how many details pass between progress log lines.
const progressEvery = 100

var downloadOpts struct {
	minInterval float64
	paramsFile  string
	year        int
	output      string
	upload      bool
	overwrite   bool
}

func init() {
	flags := downloadCmd.Flags()
	flags.Float64Var(&downloadOpts.minInterval, "min-interval", 0.5, "Minimum seconds between requests; overrides UTCC_MIN_INTERVAL")
	flags.StringVar(&downloadOpts.paramsFile, "params", "", "JSON5 file with search parameters (default: every course)")
	flags.IntVar(&downloadOpts.year, "year", 0, "Detail year (default: UTCC_YEAR or the current fiscal year)")
	flags.StringVar(&downloadOpts.output, "output", "", "Archive path (default: All_<timestamp>.json.zst in UTCC_OUTPUT_DIR)")
	flags.BoolVar(&downloadOpts.upload, "upload", false, "Upload the archive to R2 storage")
	flags.BoolVar(&downloadOpts.overwrite, "overwrite", false, "Replace an existing R2 object with the same name")
	rootCmd.AddCommand(downloadCmd)
}

var downloadCmd = &cobra.Command{
	Use:   "download [--params <file.json5>] [--output <archive>] [--upload]",
	Short: "Downloads every matching course with details into an archive.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, runID := ctxutil.EnsureRunID(cmd.Context())
		log := env.log.WithModule("download")

		params, err := loadParams(downloadOpts.paramsFile)
		if err != nil {
			return err
		}
		year := resolveYear(downloadOpts.year, env.cfg.Year, time.Now())

		minInterval := env.cfg.MinInterval
		if cmd.Flags().Changed("min-interval") {
			minInterval = seconds(downloadOpts.minInterval)
		}

		c, err := env.openCatalog(ctx, minInterval)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		output := downloadOpts.output
		if output == "" {
			output = archive.TimestampFilename(time.Now())
		}

		log.InfoContext(ctx, "Starting download",
			"params_id", params.ID(),
			"year", year,
			"min_interval", minInterval,
		)

		total, done := 0, 0
		res, err := c.SaveSearchDetailAll(ctx, params, year, utokyo.SaveOptions{
			AggregateOptions: utokyo.AggregateOptions{
				OnInitial: func(first *catalog.SearchResult) {
					total = first.TotalCount
					log.InfoContext(ctx, "Search results found",
						"courses", first.TotalCount,
						"pages", first.TotalPages,
					)
				},
				OnDetail: func(*catalog.Details) {
					done++
					if done%progressEvery == 0 || done == total {
						log.InfoContext(ctx, "Download progress",
							"progress", fmt.Sprintf("%d/%d", done, total),
						)
					}
				},
			},
			Path: output,
			Dir:  env.cfg.OutputDir,
		})
		if err != nil {
			return err
		}

		a := res.Archive
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %d of %d courses to %s (run %s)\n",
			a.Metadata.Count, a.Metadata.DeclaredTotal, res.Path, runID)

		if !downloadOpts.upload {
			return nil
		}
		r2, err := env.r2(ctx)
		if err != nil {
			return err
		}
		key, err := r2.UploadArchive(ctx, filepath.Base(res.Path), a, downloadOpts.overwrite)
		if errors.Is(err, r2client.ErrExists) {
			return fmt.Errorf("%w: use --overwrite to replace it", err)
		}
		if err != nil {
			return fmt.Errorf("failed to upload archive: %w", err)
		}
		log.InfoContext(ctx, "Archive uploaded", "key", key)
		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded to %s%s\n", r2client.Scheme, key)
		return nil
	},
}
