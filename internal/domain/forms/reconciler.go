package forms

import (
	"context"
	"fmt"
)

// TreeReconciler makes the persisted section/field tree of a template match a
// caller-supplied desired forest while preserving the identity of nodes the
// caller re-submits with their id. Matching is strictly by id against the
// direct children of the current parent: a node with no id, or an id not
// present among those children, is inserted as new. Persisted children left
// unmatched after a pass are deleted, subtrees included.
//
// The reconciler issues plain repository calls and expects the caller to run
// it inside a single transaction.
type TreeReconciler struct {
	sections SectionRepository
	fields   FieldRepository
}

func NewTreeReconciler(sections SectionRepository, fields FieldRepository) *TreeReconciler {
	return &TreeReconciler{sections: sections, fields: fields}
}

// Reconcile applies the desired forest against the template's persisted root
// sections and recurses. An empty or nil desired forest deletes every
// persisted section of the template.
func (r *TreeReconciler) Reconcile(ctx context.Context, templateID int64, desired []*Section) error {
	current, err := r.sections.ListRoots(ctx, templateID)
	if err != nil {
		return err
	}
	return r.reconcileSections(ctx, templateID, nil, current, desired)
}

func (r *TreeReconciler) reconcileSections(ctx context.Context, templateID int64, parentID *int64, current, desired []*Section) error {
	byID := make(map[int64]*Section, len(current))
	for _, sec := range current {
		byID[sec.ID] = sec
	}

	matched := make(map[int64]bool, len(desired))
	for _, want := range desired {
		if want.Name == "" {
			return fmt.Errorf("template %d: %w", templateID, ErrSectionNameRequired)
		}

		existing := byID[want.ID]
		if existing != nil {
			existing.Name = want.Name
			existing.Description = want.Description
			existing.SortOrder = want.SortOrder
			if err := r.sections.Update(ctx, existing); err != nil {
				return err
			}
			matched[existing.ID] = true
			want.ID = existing.ID
		} else {
			// No id, or an id unknown at this level: insert as a new
			// section parented here. Its desired children all become
			// inserts on recursion since it has no persisted ones.
			want.ID = 0
			want.TemplateID = templateID
			want.ParentID = parentID
			if err := r.sections.Create(ctx, want); err != nil {
				return err
			}
		}

		currentFields, err := r.fields.ListBySection(ctx, want.ID)
		if err != nil {
			return err
		}
		if err := r.reconcileFields(ctx, want.ID, currentFields, want.Fields); err != nil {
			return err
		}

		currentChildren, err := r.sections.ListChildren(ctx, want.ID)
		if err != nil {
			return err
		}
		secID := want.ID
		if err := r.reconcileSections(ctx, templateID, &secID, currentChildren, want.Children); err != nil {
			return err
		}
	}

	for _, sec := range current {
		if !matched[sec.ID] {
			if err := r.DeleteSubtree(ctx, sec.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *TreeReconciler) reconcileFields(ctx context.Context, sectionID int64, current, desired []*Field) error {
	byID := make(map[int64]*Field, len(current))
	for _, f := range current {
		byID[f.ID] = f
	}

	matched := make(map[int64]bool, len(desired))
	for _, want := range desired {
		if want.Name == "" {
			return fmt.Errorf("section %d: %w", sectionID, ErrFieldNameRequired)
		}

		existing := byID[want.ID]
		if existing != nil {
			existing.Name = want.Name
			existing.FieldType = want.FieldType
			existing.Required = want.Required
			existing.Placeholder = want.Placeholder
			existing.SortOrder = want.SortOrder
			existing.Options = want.Options
			existing.Unit = want.Unit
			if err := r.fields.Update(ctx, existing); err != nil {
				return err
			}
			matched[existing.ID] = true
			want.ID = existing.ID
		} else {
			want.ID = 0
			want.SectionID = sectionID
			if err := r.fields.Create(ctx, want); err != nil {
				return err
			}
		}
	}

	for _, f := range current {
		if !matched[f.ID] {
			if err := r.fields.Delete(ctx, f.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteSubtree removes a section, its fields, and recursively every
// descendant section. The schema carries no cascading foreign keys on the
// section tree; this is the one place subtree deletion happens.
func (r *TreeReconciler) DeleteSubtree(ctx context.Context, sectionID int64) error {
	if err := r.fields.DeleteBySection(ctx, sectionID); err != nil {
		return err
	}

	children, err := r.sections.ListChildren(ctx, sectionID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := r.DeleteSubtree(ctx, child.ID); err != nil {
			return err
		}
	}

	return r.sections.Delete(ctx, sectionID)
}
