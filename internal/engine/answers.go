package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/groundwork/internal/codefile"
	"github.com/Veraticus/groundwork/internal/codetree"
	"github.com/Veraticus/groundwork/internal/common"
	"github.com/Veraticus/groundwork/internal/model"
	"github.com/Veraticus/groundwork/internal/service"
	"github.com/Veraticus/groundwork/internal/structure"
)

// SaveResult describes what SaveStandardAnswer stored.
type SaveResult struct {
	Answer *model.StandardAnswer
	// Revision is nil for a first save and for a save with no changes.
	Revision *model.AnswerRevision
	Record   model.ModificationRecord
	Created  bool
}

// SaveStandardAnswer stores the session tree under name. The first save
// stores the whole tree. Later saves diff the stored structure against the
// session, merge the difference into the stored tree, and record it as a
// revision in the same transaction. A save that changes nothing writes
// nothing.
func (s *Session) SaveStandardAnswer(ctx context.Context, store service.Storage, name, description string) (*SaveResult, error) {
	existing, err := store.GetStandardAnswer(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load standard answer %q: %w", name, err)
	}

	if existing == nil {
		answer, err := encodeAnswer(s.tree, name, description)
		if err != nil {
			return nil, err
		}
		if err := store.SaveStandardAnswer(ctx, answer); err != nil {
			return nil, fmt.Errorf("failed to save standard answer %q: %w", name, err)
		}
		common.LogInfo("Created standard answer", common.Fields{"name": name, "codes": answer.Counts.First})
		return &SaveResult{Answer: answer, Created: true, Record: model.NewModificationRecord()}, nil
	}

	doc, err := codefile.Decode(existing.Structure, s.tree.Limits())
	if err != nil {
		return nil, fmt.Errorf("stored standard answer %q: %w", name, err)
	}

	record := structure.Diff(doc.Tree, s.tree)
	if !record.HasChanges {
		common.LogInfo("Standard answer unchanged", common.Fields{"name": name})
		return &SaveResult{Answer: existing, Record: record}, nil
	}

	merged, err := structure.Merge(doc.Tree, record)
	if err != nil {
		return nil, fmt.Errorf("failed to merge into standard answer %q: %w", name, err)
	}
	if description == "" {
		description = existing.Description
	}
	answer, err := encodeAnswer(merged, name, description)
	if err != nil {
		return nil, err
	}
	revision := &model.AnswerRevision{Record: record}

	tx, err := store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.SaveStandardAnswer(ctx, answer); err != nil {
		return nil, fmt.Errorf("failed to save standard answer %q: %w", name, err)
	}
	revision.AnswerID = answer.ID
	if err := tx.AddRevision(ctx, revision); err != nil {
		return nil, fmt.Errorf("failed to record revision: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit standard answer %q: %w", name, err)
	}

	common.LogInfo("Updated standard answer", common.Fields{
		"name":    name,
		"added":   record.Summary.AddedCodes,
		"deleted": record.Summary.DeletedCodes,
	})
	return &SaveResult{Answer: answer, Revision: revision, Record: record}, nil
}

// LoadStandardAnswer replaces the session tree with the stored answer.
func (s *Session) LoadStandardAnswer(ctx context.Context, store service.Storage, name string) (*model.StandardAnswer, error) {
	answer, err := store.GetStandardAnswer(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load standard answer %q: %w", name, err)
	}
	if answer == nil {
		return nil, fmt.Errorf("%w: standard answer %q", common.ErrNotFound, name)
	}

	doc, err := codefile.Decode(answer.Structure, s.tree.Limits())
	if err != nil {
		return nil, fmt.Errorf("stored standard answer %q: %w", name, err)
	}
	s.tree = doc.Tree
	return answer, nil
}

func encodeAnswer(tree *codetree.Tree, name, description string) (*model.StandardAnswer, error) {
	counts := tree.CountCodes()
	data, err := codefile.Encode(&codefile.Document{
		Tree: tree,
		Metadata: codefile.Metadata{
			SavedAt:     time.Now().UTC(),
			Name:        name,
			Description: description,
			Counts:      counts,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode standard answer %q: %w", name, err)
	}
	return &model.StandardAnswer{
		Name:        name,
		Description: description,
		Structure:   data,
		Counts:      counts,
	}, nil
}
