package main

import (
	"fmt"

	"github.com/Veraticus/groundwork/internal/cli"
	"github.com/Veraticus/groundwork/internal/codefile"
	"github.com/Veraticus/groundwork/internal/structure"
	"github.com/spf13/cobra"
)

func diffCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "diff ORIGINAL MODIFIED",
		Short: "Compare two structured-code files",
		Long: `Compare two coding structures by theme, category and code content.
An edited code shows up as one deletion plus one addition. With --out the
modification record is written as JSON for use with merge.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			original, err := loadCodes(args[0], false)
			if err != nil {
				return err
			}
			modified, err := loadCodes(args[1], false)
			if err != nil {
				return err
			}

			rec := structure.Diff(original.Tree, modified.Tree)
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRecord(rec)) //nolint:forbidigo // User-facing output

			if out != "" {
				if err := codefile.SaveRecord(out, rec); err != nil {
					return fmt.Errorf("failed to write record: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the modification record to this file")
	return cmd
}

func mergeCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "merge ORIGINAL RECORD",
		Short: "Apply a modification record to a structured-code file",
		Long: `Apply a record produced by diff: deletions first, then additions.
Applying the same record twice changes nothing. The result replaces
ORIGINAL unless --out is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			original, err := loadCodes(args[0], false)
			if err != nil {
				return err
			}
			rec, err := codefile.LoadRecord(args[1])
			if err != nil {
				return err
			}

			merged, err := structure.Merge(original.Tree, rec)
			if err != nil {
				return err
			}

			if out == "" {
				out = args[0]
			}
			original.Tree = merged
			if err := codefile.Save(out, original); err != nil {
				return fmt.Errorf("failed to save %s: %w", out, err)
			}

			counts := merged.CountCodes()
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf( //nolint:forbidigo // User-facing output
				"Merged into %s: %d themes, %d categories, %d codes", out, counts.Third, counts.Second, counts.First)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the merged structure here instead of ORIGINAL")
	return cmd
}
