package main

import (
	"fmt"
	"os"

	"github.com/Veraticus/groundwork/internal/marker"
	"github.com/spf13/cobra"
)

func markCmd() *cobra.Command {
	var (
		codesPath string
		strip     bool
		write     bool
	)

	cmd := &cobra.Command{
		Use:   "mark NUMBERED_FILE",
		Short: "Insert code markers into numbered text",
		Long: `Insert [A01] style markers after every sentence that a first-order code
was taken from. Marking is idempotent. --strip removes code markers and
keeps sentence numbers.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			var result string
			if strip {
				result = marker.StripMarkers(string(data))
			} else {
				doc, err := loadCodes(codesPath, false)
				if err != nil {
					return err
				}
				result = marker.Markup(string(data), doc.Tree)
			}

			if write {
				return os.WriteFile(args[0], []byte(result), 0o600)
			}
			fmt.Fprint(cmd.OutOrStdout(), result) //nolint:forbidigo // User-facing output
			return nil
		},
	}

	cmd.Flags().StringVarP(&codesPath, "codes", "c", defaultCodesFile, "structured-code file")
	cmd.Flags().BoolVar(&strip, "strip", false, "remove code markers instead of adding them")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite the file in place")
	return cmd
}
