package main

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/garyellow/ut-course-catalog-go/internal/archive"
	"github.com/garyellow/ut-course-catalog-go/internal/export"
	"github.com/garyellow/ut-course-catalog-go/internal/r2client"
)

var convertOutput string

func init() {
	convertCmd.Flags().StringVar(&convertOutput, "output", "", "CSV path (default: archive name with .csv)")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <archive | r2://key> [--output <file.csv>]",
	Short: "Converts a downloaded archive to CSV.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		source := args[0]

		a, err := readArchive(ctx, source)
		if err != nil {
			return err
		}
		if err := a.Validate(); err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}

		output := convertOutput
		if output == "" {
			output = csvPath(source, env.cfg.OutputDir)
		}
		if err := export.WriteCSVFile(output, a.Details); err != nil {
			return err
		}

		env.log.WithModule("convert").InfoContext(ctx, "Archive converted",
			"source", source,
			"output", output,
			"courses", len(a.Details),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d courses to %s\n", len(a.Details), output)
		return nil
	},
}

// readArchive loads a local archive or an "r2://key" object.
func readArchive(ctx context.Context, source string) (*archive.Archive, error) {
	key, remote := r2client.ParseLocation(source)
	if !remote {
		return archive.ReadFile(source)
	}
	r2, err := env.r2(ctx)
	if err != nil {
		return nil, err
	}
	return r2.DownloadArchive(ctx, key)
}

// csvPath derives the default CSV path. Local archives convert next to
// themselves; remote ones into dir.
func csvPath(source, dir string) string {
	if key, remote := r2client.ParseLocation(source); remote {
		return filepath.Join(dir, csvName(path.Base(key)))
	}
	return filepath.Join(filepath.Dir(source), csvName(filepath.Base(source)))
}

func csvName(name string) string {
	return strings.TrimSuffix(name, archive.Extension) + ".csv"
}
