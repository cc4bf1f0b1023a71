package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/groundwork/internal/cli"
	"github.com/Veraticus/groundwork/internal/common"
	"github.com/spf13/cobra"
)

func numberCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "number FILE...",
		Short: "Number transcript sentences",
		Long: `Split transcripts into sentences and append a global sentence number to
each one. Files are numbered in name order, so the same inputs always get
the same numbers.`,
		Example: `  # Print numbered text
  groundwork number interview1.txt interview2.txt

  # Write interview1.numbered.txt and interview2.numbered.txt to out/
  groundwork number -o out interview*.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cli.NewInterruptHandler(cmd.ErrOrStderr()).HandleInterrupts(cmd.Context(), "Numbering")

			texts, err := readTexts(ctx, args)
			if err != nil {
				return err
			}

			session := newSession(nil)
			var progress *cli.Progress
			if outDir != "" && len(texts) > 1 {
				progress = cli.NewProgress(cmd.ErrOrStderr(), len(texts), "Numbering transcripts...")
			}
			results := session.LoadTexts(texts)

			out := cmd.OutOrStdout()
			for _, file := range session.Files() {
				if err := ctx.Err(); err != nil {
					return err
				}
				result := results[file]
				if outDir == "" {
					fmt.Fprintf(out, "%s\n%s\n\n", cli.BoldStyle.Render("== "+file), result.Text) //nolint:forbidigo // User-facing output
					continue
				}
				path := filepath.Join(outDir, numberedName(file))
				if err := os.MkdirAll(outDir, 0o750); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
				if err := os.WriteFile(path, []byte(result.Text+"\n"), 0o600); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				progress.Add(1)
				common.LogDebug("wrote numbered transcript", common.Fields{"file": path, "sentences": len(result.Mapping)})
			}
			progress.Finish()

			if outDir != "" {
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Numbered %d sentences in %d files", session.Numberer().Count(), len(texts)))) //nolint:forbidigo // User-facing output
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "write <name>.numbered<ext> files to this directory")
	return cmd
}
