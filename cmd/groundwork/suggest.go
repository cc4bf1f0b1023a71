package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/groundwork/internal/cli"
	"github.com/Veraticus/groundwork/internal/codefile"
	"github.com/Veraticus/groundwork/internal/common"
	"github.com/Veraticus/groundwork/internal/pattern"
	"github.com/spf13/cobra"
)

func suggestCmd() *cobra.Command {
	var (
		codesPath string
		apply     bool
	)

	cmd := &cobra.Command{
		Use:   "suggest FILE...",
		Short: "Suggest codes for transcript sentences from the coding rules",
		Long: `Number the transcripts and match every sentence against the active
coding rules. Suggestions that would conflict with the codes file are
left out. With --apply the best suggestion for each uncoded sentence is
written to the codes file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cli.NewInterruptHandler(cmd.ErrOrStderr()).HandleInterrupts(cmd.Context(), "Suggesting")

			texts, err := readTexts(ctx, args)
			if err != nil {
				return err
			}
			doc, err := loadCodes(codesPath, true)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rules, err := store.GetActiveRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to load rules: %w", err)
			}
			if len(rules) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("No active rules. Use 'groundwork rules add' to create one.")) //nolint:forbidigo // User-facing output
				return nil
			}
			matcher := pattern.NewMatcher(rules)

			session := newSession(doc.Tree)
			session.LoadTexts(texts)

			if !apply {
				suggester := pattern.NewSuggester(matcher, pattern.NewValidator(doc.Tree.Limits()))
				out := cmd.OutOrStdout()
				for _, sentence := range session.Numberer().Sentences() {
					suggestions, err := suggester.SuggestWithValidation(ctx, sentence, doc.Tree)
					if err != nil {
						return err
					}
					if len(suggestions) == 0 {
						continue
					}
					fmt.Fprintf(out, "%s %s\n", cli.BoldStyle.Render(fmt.Sprintf("[%d]", sentence.ID)), sentence.Text) //nolint:forbidigo // User-facing output
					for _, s := range suggestions {
						fmt.Fprintf(out, "    %s %s\n", cli.CodeStyle.Render(s.FirstOrder), cli.SubtleStyle.Render(s.Reason)) //nolint:forbidigo // User-facing output
					}
				}
				return nil
			}

			stats, err := session.ApplyRules(ctx, matcher)
			if err != nil {
				return common.NewUserError("Rules could not be applied, codes file left unchanged", err)
			}

			doc.Tree = session.Tree()
			doc.Metadata.SavedAt = time.Now().UTC()
			if err := codefile.Save(codesPath, doc); err != nil {
				return fmt.Errorf("failed to save %s: %w", codesPath, err)
			}

			for ruleID, hits := range stats.RuleHits {
				for range hits {
					if err := store.IncrementRuleUseCount(ctx, ruleID); err != nil {
						common.LogError(err, "failed to record rule use", common.Fields{"rule_id": ruleID})
						break
					}
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf( //nolint:forbidigo // User-facing output
				"%d codes created, %d extended", stats.Created, stats.Extended)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&codesPath, "codes", "c", defaultCodesFile, "structured-code file")
	cmd.Flags().BoolVar(&apply, "apply", false, "write the best suggestion for each uncoded sentence")
	return cmd
}
