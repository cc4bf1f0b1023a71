package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/Veraticus/groundwork/internal/cli"
	"github.com/Veraticus/groundwork/internal/common"
	"github.com/Veraticus/groundwork/internal/storage"
	"github.com/spf13/cobra"
)

func checkpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage database checkpoints",
		Long: `Create, list, restore, and delete copies of the groundwork database.

Deleting a standard answer takes an automatic checkpoint first; the five
most recent automatic checkpoints are kept.`,
		Example: `  groundwork checkpoint create --tag before-round-2
  groundwork checkpoint list
  groundwork checkpoint restore before-round-2`,
	}

	cmd.AddCommand(createCheckpointCmd())
	cmd.AddCommand(listCheckpointsCmd())
	cmd.AddCommand(restoreCheckpointCmd())
	cmd.AddCommand(deleteCheckpointCmd())

	return cmd
}

// withCheckpoints opens the database and runs fn with its checkpoint manager.
func withCheckpoints(cmd *cobra.Command, fn func(*storage.CheckpointManager) error) error {
	store, err := initStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	manager, err := store.NewCheckpointManager()
	if err != nil {
		return fmt.Errorf("failed to create checkpoint manager: %w", err)
	}
	return fn(manager)
}

func createCheckpointCmd() *cobra.Command {
	var tag, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new checkpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCheckpoints(cmd, func(m *storage.CheckpointManager) error {
				info, err := m.Create(cmd.Context(), tag, description)
				if err != nil {
					return common.NewUserError("Could not create checkpoint", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf( //nolint:forbidigo // User-facing output
					"Created checkpoint %s (%d answers, %d revisions, %d rules)", info.ID, info.Answers, info.Revisions, info.Rules)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "checkpoint name (default: timestamp)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "checkpoint description")
	return cmd
}

func listCheckpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List checkpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCheckpoints(cmd, func(m *storage.CheckpointManager) error {
				checkpoints, err := m.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(checkpoints) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("No checkpoints")) //nolint:forbidigo // User-facing output
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				defer func() { _ = w.Flush() }()
				fmt.Fprintln(w, "TAG\tCREATED\tANSWERS\tREVISIONS\tRULES\tDESCRIPTION") //nolint:forbidigo // User-facing output
				for _, cp := range checkpoints {
					fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n", //nolint:forbidigo // User-facing output
						cp.ID, cp.CreatedAt.Local().Format("2006-01-02 15:04"), cp.Answers, cp.Revisions, cp.Rules, cp.Description)
				}
				return nil
			})
		},
	}
}

func restoreCheckpointCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore TAG",
		Short: "Replace the database with a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).
					Confirm(cmd.Context(), fmt.Sprintf("Replace the database with checkpoint %q?", args[0]), false)
				if err != nil || !ok {
					return err
				}
			}
			return withCheckpoints(cmd, func(m *storage.CheckpointManager) error {
				if err := m.Restore(cmd.Context(), args[0]); err != nil {
					return common.NewUserError(fmt.Sprintf("Could not restore checkpoint %q", args[0]), err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Restored checkpoint "+args[0])) //nolint:forbidigo // User-facing output
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func deleteCheckpointCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete TAG",
		Short: "Delete a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCheckpoints(cmd, func(m *storage.CheckpointManager) error {
				if err := m.Delete(cmd.Context(), args[0]); err != nil {
					return common.NewUserError(fmt.Sprintf("Could not delete checkpoint %q", args[0]), err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted checkpoint "+args[0])) //nolint:forbidigo // User-facing output
				return nil
			})
		},
	}
}
