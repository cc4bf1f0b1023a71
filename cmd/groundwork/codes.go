package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/groundwork/internal/cli"
	"github.com/Veraticus/groundwork/internal/codefile"
	"github.com/Veraticus/groundwork/internal/common"
	"github.com/Veraticus/groundwork/internal/model"
	"github.com/spf13/cobra"
)

const defaultCodesFile = "codes.json"

func codesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codes",
		Short: "Edit a structured-code file",
		Long: `Show and edit the coding hierarchy stored in a structured-code file.
Themes (C01), categories (B01) and codes (A01) get identifiers
automatically; deleting a node never renumbers the others.`,
		Example: `  groundwork codes add-theme 工作挑战
  groundwork codes add-category C01 时间管理
  groundwork codes add-code 经常加班 --category B01 --sentence 3
  groundwork codes show --sentences`,
	}
	cmd.PersistentFlags().StringP("file", "f", defaultCodesFile, "structured-code file")

	cmd.AddCommand(showCodesCmd())
	cmd.AddCommand(addThemeCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(addCodeCmd())
	cmd.AddCommand(moveCodesCmd())
	cmd.AddCommand(detachCodeCmd())
	cmd.AddCommand(deleteCodeCmd())
	cmd.AddCommand(renameCodeCmd())

	return cmd
}

// editCodes loads the codes file, applies edit and saves the result. The
// file is not written when edit fails.
func editCodes(cmd *cobra.Command, edit func(doc *codefile.Document) (string, error)) error {
	path, _ := cmd.Flags().GetString("file")
	doc, err := loadCodes(path, true)
	if err != nil {
		return err
	}

	message, err := edit(doc)
	if err != nil {
		if common.IsRejected(err) || errors.Is(err, common.ErrNotFound) {
			return common.NewUserError(err.Error(), err)
		}
		return err
	}

	doc.Metadata.SavedAt = time.Now().UTC()
	if err := codefile.Save(path, doc); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(message)) //nolint:forbidigo // User-facing output
	return nil
}

func showCodesCmd() *cobra.Command {
	var sentences bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the coding hierarchy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("file")
			doc, err := loadCodes(path, false)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTree(doc.Tree, cli.TreeOptions{ShowSentences: sentences})) //nolint:forbidigo // User-facing output
			return nil
		},
	}
	cmd.Flags().BoolVar(&sentences, "sentences", false, "list sentence numbers under each code")
	return cmd
}

func addThemeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-theme NAME",
		Short: "Add a third-order theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editCodes(cmd, func(doc *codefile.Document) (string, error) {
				theme, err := doc.Tree.AddThirdOrder(args[0])
				if err != nil {
					return "", err
				}
				return "Added theme " + theme.Display(), nil
			})
		},
	}
}

func addCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-category THEME_ID NAME",
		Short: "Add a second-order category under a theme",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editCodes(cmd, func(doc *codefile.Document) (string, error) {
				cat, err := doc.Tree.AddSecondOrder(args[0], args[1])
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Added category %s under %s", cat.Display(), args[0]), nil
			})
		},
	}
}

func addCodeCmd() *cobra.Command {
	var (
		category   string
		sentenceID int
		source     string
		text       string
	)

	cmd := &cobra.Command{
		Use:   "add-code CONTENT",
		Short: "Add a first-order code",
		Long: `Add a first-order code under a category, or to the unclassified list
when --category is not given. --sentence records the sentence the code
was taken from.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var details []model.SentenceRecord
			if sentenceID > 0 {
				details = append(details, model.SentenceRecord{SentenceID: sentenceID, FilePath: source, Text: text})
			}
			return editCodes(cmd, func(doc *codefile.Document) (string, error) {
				if category == "" {
					entry, err := doc.Tree.AddUnclassifiedFirstOrder(args[0], details)
					if err != nil {
						return "", err
					}
					return "Added unclassified code " + entry.Display(), nil
				}
				entry, err := doc.Tree.AddFirstOrder(category, args[0], details)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Added code %s under %s", entry.Display(), category), nil
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "parent category id (e.g. B01)")
	cmd.Flags().IntVar(&sentenceID, "sentence", 0, "sentence number the code was taken from")
	cmd.Flags().StringVar(&source, "source", "", "transcript file of the sentence")
	cmd.Flags().StringVar(&text, "text", "", "sentence text")
	return cmd
}

func moveCodesCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "move ID... --to CATEGORY_ID",
		Short: "Move unclassified codes into a category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editCodes(cmd, func(doc *codefile.Document) (string, error) {
				if err := doc.Tree.MoveEntries(args, to); err != nil {
					return "", err
				}
				return fmt.Sprintf("Moved %d codes to %s", len(args), to), nil
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "target category id")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func detachCodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detach ID",
		Short: "Move a code back to the unclassified list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editCodes(cmd, func(doc *codefile.Document) (string, error) {
				if err := doc.Tree.DetachEntry(args[0]); err != nil {
					return "", err
				}
				return "Detached " + args[0], nil
			})
		},
	}
}

func deleteCodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a code, category or theme and everything below it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editCodes(cmd, func(doc *codefile.Document) (string, error) {
				if err := doc.Tree.DeleteEntry(args[0]); err != nil {
					return "", err
				}
				return "Deleted " + args[0], nil
			})
		},
	}
}

func renameCodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename ID TEXT",
		Short: "Change a node's name or content, keeping its id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editCodes(cmd, func(doc *codefile.Document) (string, error) {
				if err := doc.Tree.UpdateContent(args[0], args[1]); err != nil {
					return "", err
				}
				return fmt.Sprintf("Renamed %s", args[0]), nil
			})
		},
	}
}
