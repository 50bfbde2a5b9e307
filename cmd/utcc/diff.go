package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/garyellow/ut-course-catalog-go/internal/delta"
)

func init() {
	rootCmd.AddCommand(diffCmd)
}

var diffCmd = &cobra.Command{
	Use:   "diff <before> <after>",
	Short: "Lists courses added, removed or changed between two archives.",
	Long:  "Lists courses added, removed or changed between two archives. Either archive may be an r2://key.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		before, err := readArchive(ctx, args[0])
		if err != nil {
			return err
		}
		after, err := readArchive(ctx, args[1])
		if err != nil {
			return err
		}

		report := delta.Compare(before.Details, after.Details)
		env.log.WithModule("diff").InfoContext(ctx, "Archives compared",
			"added", len(report.Added),
			"removed", len(report.Removed),
			"changed", len(report.Changed),
		)
		renderReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func renderReport(w io.Writer, r *delta.Report) {
	if r.Empty() {
		fmt.Fprintln(w, "No differences.")
		return
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"", "時間割コード", "コース名", "変更"})
	for _, d := range r.Added {
		t.AppendRow(table.Row{"+", d.TimetableCode, d.Title, ""})
	}
	for _, d := range r.Removed {
		t.AppendRow(table.Row{"-", d.TimetableCode, d.Title, ""})
	}
	for _, c := range r.Changed {
		t.AppendRow(table.Row{"~", c.TimetableCode, c.Title, strings.Join(c.Columns, ",")})
	}
	t.Render()
	fmt.Fprintf(w, "%d added, %d removed, %d changed\n", len(r.Added), len(r.Removed), len(r.Changed))
}
