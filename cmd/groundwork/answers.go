package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/groundwork/internal/cli"
	"github.com/Veraticus/groundwork/internal/common"
	"github.com/Veraticus/groundwork/internal/service"
	"github.com/spf13/cobra"
)

func answersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "answers",
		Short: "Manage standard answers",
		Long: `A standard answer is a named, saved coding structure. Saving again
under the same name records what changed as a revision and merges it in.`,
	}

	cmd.AddCommand(saveAnswerCmd())
	cmd.AddCommand(listAnswersCmd())
	cmd.AddCommand(showAnswerCmd())
	cmd.AddCommand(answerHistoryCmd())
	cmd.AddCommand(deleteAnswerCmd())

	return cmd
}

func saveAnswerCmd() *cobra.Command {
	var (
		codesPath   string
		description string
	)

	cmd := &cobra.Command{
		Use:   "save NAME",
		Short: "Save a structured-code file as a standard answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := loadCodes(codesPath, false)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			result, err := newSession(doc.Tree).SaveStandardAnswer(ctx, store, args[0], description)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case result.Created:
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Created standard answer %q with %d codes", args[0], result.Answer.Counts.First))) //nolint:forbidigo // User-facing output
			case result.Revision == nil:
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Standard answer %q is already up to date", args[0]))) //nolint:forbidigo // User-facing output
			default:
				fmt.Fprintln(out, cli.RenderRecord(result.Record))                                                       //nolint:forbidigo // User-facing output
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Saved revision %d of %q", result.Revision.ID, args[0]))) //nolint:forbidigo // User-facing output
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&codesPath, "codes", "c", defaultCodesFile, "structured-code file")
	cmd.Flags().StringVarP(&description, "description", "d", "", "description (kept from the previous save if empty)")
	return cmd
}

func listAnswersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List standard answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			answers, err := store.ListStandardAnswers(ctx)
			if err != nil {
				return fmt.Errorf("failed to list standard answers: %w", err)
			}
			if len(answers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("No standard answers yet. Use 'groundwork answers save' to create one.")) //nolint:forbidigo // User-facing output
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()
			fmt.Fprintln(w, "NAME\tTHEMES\tCATEGORIES\tCODES\tUPDATED\tDESCRIPTION") //nolint:forbidigo // User-facing output
			for _, a := range answers {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\n", //nolint:forbidigo // User-facing output
					a.Name, a.Counts.Third, a.Counts.Second, a.Counts.First,
					a.UpdatedAt.Local().Format("2006-01-02 15:04"), a.Description)
			}
			return nil
		},
	}
}

func showAnswerCmd() *cobra.Command {
	var (
		out       string
		sentences bool
	)

	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Print a standard answer, or export it with --out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			session := newSession(nil)
			answer, err := session.LoadStandardAnswer(ctx, store, args[0])
			if err != nil {
				return common.NewUserError(fmt.Sprintf("No standard answer named %q", args[0]), err)
			}

			if out != "" {
				if err := os.WriteFile(out, answer.Structure, 0o600); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Exported to "+out)) //nolint:forbidigo // User-facing output
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(answer.Name, cli.RenderTree(session.Tree(), cli.TreeOptions{ShowSentences: sentences}))) //nolint:forbidigo // User-facing output
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the stored structured-code file here")
	cmd.Flags().BoolVar(&sentences, "sentences", false, "list sentence numbers under each code")
	return cmd
}

func answerHistoryCmd() *cobra.Command {
	var (
		since   string
		until   string
		limit   int
		details bool
	)

	cmd := &cobra.Command{
		Use:   "history NAME",
		Short: "List the revisions of a standard answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			filter := service.RevisionFilter{Limit: limit}
			var err error
			if filter.Since, err = parseDate(since); err != nil {
				return err
			}
			if filter.Until, err = parseDate(until); err != nil {
				return err
			}
			if filter.Until != nil {
				endOfDay := filter.Until.Add(24*time.Hour - time.Nanosecond)
				filter.Until = &endOfDay
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			answer, err := store.GetStandardAnswer(ctx, args[0])
			if err != nil {
				return err
			}
			if answer == nil {
				return common.NewUserError(fmt.Sprintf("No standard answer named %q", args[0]), common.ErrNotFound)
			}
			filter.AnswerID = answer.ID

			revisions, err := store.GetRevisions(ctx, filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(revisions) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No revisions")) //nolint:forbidigo // User-facing output
				return nil
			}
			for _, rev := range revisions {
				s := rev.Record.Summary
				fmt.Fprintf(out, "%s  %s  +%d -%d\n", //nolint:forbidigo // User-facing output
					cli.BoldStyle.Render(fmt.Sprintf("#%d", rev.ID)),
					rev.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					s.AddedCodes, s.DeletedCodes)
				if details {
					fmt.Fprintln(out, cli.RenderRecord(rev.Record)) //nolint:forbidigo // User-facing output
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "only revisions on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "only revisions before the end of this date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of revisions")
	cmd.Flags().BoolVar(&details, "details", false, "print each revision's changes")
	return cmd
}

// parseDate parses an optional YYYY-MM-DD flag value.
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD", value), err)
	}
	return &t, nil
}

func deleteAnswerCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a standard answer and its history",
		Long: `Delete a standard answer and all of its revisions. An automatic
checkpoint of the database is taken first; restore it with
'groundwork checkpoint restore'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !yes {
				ok, err := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).
					Confirm(ctx, fmt.Sprintf("Delete standard answer %q and its history?", args[0]), false)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if manager, err := store.NewCheckpointManager(); err == nil {
				if _, err := manager.AutoCheckpoint(ctx, "answers-delete"); err != nil {
					return fmt.Errorf("failed to checkpoint before delete: %w", err)
				}
			}

			if err := store.DeleteStandardAnswer(ctx, args[0]); err != nil {
				return common.NewUserError(fmt.Sprintf("Could not delete %q", args[0]), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted standard answer %q", args[0]))) //nolint:forbidigo // User-facing output
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
