package main

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/garyellow/ut-course-catalog-go/internal/r2client"
)

func init() {
	remoteCmd.AddCommand(remoteListCmd, remoteRemoveCmd)
	rootCmd.AddCommand(remoteCmd)
}

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Manages archives uploaded to R2 storage.",
}

var remoteListCmd = &cobra.Command{
	Use:   "ls",
	Short: "Lists uploaded archives, newest first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		r2, err := env.r2(cmd.Context())
		if err != nil {
			return err
		}
		objects, err := r2.ListArchives(cmd.Context())
		if err != nil {
			return err
		}
		renderObjects(cmd.OutOrStdout(), objects)
		return nil
	},
}

var remoteRemoveCmd = &cobra.Command{
	Use:   "rm <r2://key>",
	Short: "Deletes an uploaded archive.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		key, ok := r2client.ParseLocation(args[0])
		if !ok {
			return fmt.Errorf("%q is not an %s location", args[0], r2client.Scheme)
		}

		r2, err := env.r2(ctx)
		if err != nil {
			return err
		}
		if err := r2.DeleteArchive(ctx, key); err != nil {
			return err
		}
		env.log.WithModule("remote").InfoContext(ctx, "Archive deleted", "key", key)
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s%s\n", r2client.Scheme, key)
		return nil
	},
}

func renderObjects(w io.Writer, objects []r2client.ObjectInfo) {
	if len(objects) == 0 {
		fmt.Fprintln(w, "No archives found.")
		return
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Location", "Size", "Last modified"})
	for _, obj := range objects {
		t.AppendRow(table.Row{
			r2client.Scheme + obj.Key,
			obj.Size,
			obj.LastModified.Local().Format(time.DateTime),
		})
	}
	t.Render()
}
