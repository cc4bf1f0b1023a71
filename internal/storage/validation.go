package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/groundwork/internal/model"
	"github.com/Veraticus/groundwork/internal/service"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidAnswer    = errors.New("invalid standard answer")
	ErrInvalidRevision  = errors.New("invalid answer revision")
	ErrInvalidRule      = errors.New("invalid coding rule")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateStandardAnswer validates an answer before it is written.
func validateStandardAnswer(answer *model.StandardAnswer) error {
	if answer == nil {
		return fmt.Errorf("%w: standard answer", ErrNilParameter)
	}
	if strings.TrimSpace(answer.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidAnswer)
	}
	if len(answer.Structure) == 0 {
		return fmt.Errorf("%w: missing structure", ErrInvalidAnswer)
	}
	if answer.Counts.First < 0 || answer.Counts.Second < 0 || answer.Counts.Third < 0 {
		return fmt.Errorf("%w: negative code count", ErrInvalidAnswer)
	}
	return nil
}

// validateRevision validates a revision before it is written.
func validateRevision(revision *model.AnswerRevision) error {
	if revision == nil {
		return fmt.Errorf("%w: revision", ErrNilParameter)
	}
	if strings.TrimSpace(revision.AnswerID) == "" {
		return fmt.Errorf("%w: missing answer ID", ErrInvalidRevision)
	}
	return nil
}

// validateRevisionFilter checks the date range and paging values.
func validateRevisionFilter(filter service.RevisionFilter) error {
	if filter.Since != nil && filter.Until != nil && filter.Until.Before(*filter.Since) {
		return fmt.Errorf("%w: until %v is before since %v", ErrInvalidDateRange, *filter.Until, *filter.Since)
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return fmt.Errorf("%w: limit and offset cannot be negative", ErrInvalidRevision)
	}
	return nil
}

// validateCodingRule validates a rule before it is written.
func validateCodingRule(rule *model.CodingRule) error {
	if rule == nil {
		return fmt.Errorf("%w: coding rule", ErrNilParameter)
	}
	if strings.TrimSpace(rule.Pattern) == "" {
		return fmt.Errorf("%w: missing pattern", ErrInvalidRule)
	}
	if strings.TrimSpace(rule.FirstOrder) == "" {
		return fmt.Errorf("%w: missing first-order code", ErrInvalidRule)
	}
	if (rule.SecondOrder == "") != (rule.ThirdOrder == "") {
		return fmt.Errorf("%w: category and theme must be given together", ErrInvalidRule)
	}
	return nil
}
