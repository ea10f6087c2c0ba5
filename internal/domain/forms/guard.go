package forms

import (
	"context"
	"fmt"
)

// MutationGuard blocks structural changes to templates already in clinical
// use. A template with at least one submission is immutable: its sections and
// fields cannot change and the template cannot be deleted.
type MutationGuard struct {
	submissions SubmissionRepository
}

func NewMutationGuard(submissions SubmissionRepository) *MutationGuard {
	return &MutationGuard{submissions: submissions}
}

// AssertMutable returns ErrTemplateInUse when any submission references the
// template, otherwise nil.
func (g *MutationGuard) AssertMutable(ctx context.Context, templateID int64) error {
	n, err := g.submissions.CountByTemplate(ctx, templateID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("template %d: %w", templateID, ErrTemplateInUse)
	}
	return nil
}
