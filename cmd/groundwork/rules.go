package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/Veraticus/groundwork/internal/cli"
	"github.com/Veraticus/groundwork/internal/codetree"
	"github.com/Veraticus/groundwork/internal/common"
	"github.com/Veraticus/groundwork/internal/model"
	"github.com/Veraticus/groundwork/internal/pattern"
	"github.com/Veraticus/groundwork/internal/service"
	"github.com/spf13/cobra"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage coding rules",
		Long: `Coding rules suggest a first-order code for every sentence containing a
phrase (or matching a regular expression with --regex). Rules with a
higher priority win when several match.`,
	}

	cmd.AddCommand(addRuleCmd())
	cmd.AddCommand(listRulesCmd())
	cmd.AddCommand(deleteRuleCmd())

	return cmd
}

func addRuleCmd() *cobra.Command {
	var rule model.CodingRule

	cmd := &cobra.Command{
		Use:   "add PATTERN FIRST_ORDER",
		Short: "Add a coding rule",
		Example: `  groundwork rules add 加班 经常加班 --category 时间管理 --theme 工作挑战
  groundwork rules add '沟通|交流' 沟通不畅 --regex --priority 5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rule.Pattern = args[0]
			rule.FirstOrder = args[1]
			rule.IsActive = true
			if rule.Name == "" {
				rule.Name = rule.FirstOrder
			}

			validator := pattern.NewValidator(codetree.LimitsFromConfig(codingConfig()))
			if err := validator.ValidateRule(rule); err != nil {
				return common.NewUserError(err.Error(), err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.CreateRule(ctx, &rule); err != nil {
				return fmt.Errorf("failed to create rule: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created rule %d: %s", rule.ID, describeRule(rule)))) //nolint:forbidigo // User-facing output
			return nil
		},
	}

	cmd.Flags().StringVar(&rule.Name, "name", "", "rule name (defaults to the code)")
	cmd.Flags().StringVar(&rule.SecondOrder, "category", "", "category to place the code under")
	cmd.Flags().StringVar(&rule.ThirdOrder, "theme", "", "theme of the category")
	cmd.Flags().BoolVar(&rule.IsRegex, "regex", false, "treat PATTERN as a regular expression")
	cmd.Flags().IntVar(&rule.Priority, "priority", 0, "higher priority rules win")
	return cmd
}

func describeRule(rule model.CodingRule) string {
	target := rule.FirstOrder
	if rule.Classified() {
		target = fmt.Sprintf("%s / %s / %s", rule.ThirdOrder, rule.SecondOrder, rule.FirstOrder)
	}
	if rule.IsRegex {
		return fmt.Sprintf("/%s/ -> %s", rule.Pattern, target)
	}
	return fmt.Sprintf("%q -> %s", rule.Pattern, target)
}

func listRulesCmd() *cobra.Command {
	var (
		all    bool
		theme  string
		filter service.RuleFilter
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List coding rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			filter.IncludeInactive = all
			filter.ThirdOrder = theme
			rules, err := store.GetRules(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list rules: %w", err)
			}
			if len(rules) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("No rules found. Use 'groundwork rules add' to create one.")) //nolint:forbidigo // User-facing output
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()
			fmt.Fprintln(w, "ID\tPRIORITY\tUSES\tACTIVE\tRULE") //nolint:forbidigo // User-facing output
			for _, r := range rules {
				fmt.Fprintf(w, "%d\t%d\t%d\t%t\t%s\n", r.ID, r.Priority, r.UseCount, r.IsActive, describeRule(r)) //nolint:forbidigo // User-facing output
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include inactive rules")
	cmd.Flags().StringVar(&theme, "theme", "", "only rules placing codes under this theme")
	cmd.Flags().StringVar(&filter.SecondOrder, "category", "", "only rules placing codes under this category")
	return cmd
}

func deleteRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a coding rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return common.NewUserError(fmt.Sprintf("Invalid rule id %q", args[0]), err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteRule(ctx, id); err != nil {
				return common.NewUserError(fmt.Sprintf("Could not delete rule %d", id), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted rule %d", id))) //nolint:forbidigo // User-facing output
			return nil
		},
	}
}
