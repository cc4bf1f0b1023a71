package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/groundwork/internal/cli"
	"github.com/Veraticus/groundwork/internal/codefile"
	"github.com/Veraticus/groundwork/internal/common"
	"github.com/Veraticus/groundwork/internal/engine"
	"github.com/spf13/cobra"
)

// labelRecord is one line of a labels file.
type labelRecord struct {
	FirstOrder  string `json:"first_order"`
	SecondOrder string `json:"second_order,omitempty"`
	ThirdOrder  string `json:"third_order,omitempty"`
	SentenceID  int    `json:"sentence_id"`
}

func readLabels(path string) ([]engine.Label, error) {
	data, err := os.ReadFile(path) // #nosec G304 - user supplied labels file
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var records []labelRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, common.NewUserError(fmt.Sprintf("Labels file %s is not a JSON array of labels", path), fmt.Errorf("%w: %w", common.ErrInvalidFormat, err))
	}
	labels := make([]engine.Label, len(records))
	for i, r := range records {
		labels[i] = engine.Label(r)
	}
	return labels, nil
}

func labelCmd() *cobra.Command {
	var (
		codesPath  string
		labelsPath string
	)

	cmd := &cobra.Command{
		Use:   "label FILE...",
		Short: "Code sentences from a file of predicted labels",
		Long: `Number the transcripts, then apply a JSON array of labels
({"sentence_id", "first_order", "second_order", "third_order"}) to the
codes file. A label repeating an existing code adds the sentence to it;
labels without a category and theme create unclassified codes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			labels, err := readLabels(labelsPath)
			if err != nil {
				return err
			}
			texts, err := readTexts(ctx, args)
			if err != nil {
				return err
			}
			doc, err := loadCodes(codesPath, true)
			if err != nil {
				return err
			}

			session := newSession(doc.Tree)
			session.LoadTexts(texts)
			stats, err := session.ApplyLabels(labels)
			if err != nil {
				return common.NewUserError("Labels were rejected, codes file left unchanged", err)
			}

			doc.Tree = session.Tree()
			doc.Metadata.SavedAt = time.Now().UTC()
			if err := codefile.Save(codesPath, doc); err != nil {
				return fmt.Errorf("failed to save %s: %w", codesPath, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf( //nolint:forbidigo // User-facing output
				"%d codes created, %d extended, %d labels skipped", stats.Created, stats.Extended, stats.Skipped)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&codesPath, "codes", "c", defaultCodesFile, "structured-code file to update")
	cmd.Flags().StringVarP(&labelsPath, "labels", "l", "", "labels JSON file")
	_ = cmd.MarkFlagRequired("labels")
	return cmd
}
