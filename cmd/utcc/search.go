package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/garyellow/ut-course-catalog-go/internal/catalog"
	"github.com/garyellow/ut-course-catalog-go/internal/export"
)

var searchOpts struct {
	keyword    string
	paramsFile string
	page       int
}

func init() {
	flags := searchCmd.Flags()
	flags.StringVar(&searchOpts.keyword, "keyword", "", "Free-text keyword; overrides the params file")
	flags.StringVar(&searchOpts.paramsFile, "params", "", "JSON5 file with search parameters")
	flags.IntVar(&searchOpts.page, "page", 1, "Result page (1-based)")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [--keyword <text>] [--page <n>]",
	Short: "Prints one page of search results.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		params, err := loadParams(searchOpts.paramsFile)
		if err != nil {
			return err
		}
		if searchOpts.keyword != "" {
			params.Keyword = searchOpts.keyword
		}

		c, err := env.openCatalog(ctx, env.cfg.MinInterval)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		result, err := c.FetchSearch(ctx, params, searchOpts.page)
		if err != nil {
			return err
		}
		renderSearchResult(cmd.OutOrStdout(), result)
		return nil
	},
}

func renderSearchResult(w io.Writer, result *catalog.SearchResult) {
	if result.Empty() {
		fmt.Fprintln(w, "No courses found.")
		return
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"時間割コード", "共通科目コード", "コース名", "教員", "学期", "曜限"})
	for _, item := range result.Items {
		t.AppendRow(table.Row{
			item.TimetableCode,
			item.CommonCode.String(),
			item.Title,
			item.Lecturer,
			export.JoinSemesters(item.Semesters),
			export.JoinPeriods(item.Periods),
		})
	}
	t.AppendFooter(table.Row{
		"", "", "", "",
		fmt.Sprintf("%d-%d / %d", result.FirstIndex, result.LastIndex, result.TotalCount),
		fmt.Sprintf("page %d/%d", result.CurrentPage, result.TotalPages),
	})
	t.Render()
}
