package forms

import "context"

// TreeBuilder reassembles a template's full section/field structure from
// persisted state, ordered and with subsections nested. Pure read side.
type TreeBuilder struct {
	sections SectionRepository
	fields   FieldRepository
}

func NewTreeBuilder(sections SectionRepository, fields FieldRepository) *TreeBuilder {
	return &TreeBuilder{sections: sections, fields: fields}
}

// BuildForest returns the ordered forest of sections for the template, each
// with its ordered fields and ordered child sections, recursively. A missing
// or section-less template yields an empty forest, not an error; callers that
// require the template to exist check separately.
func (b *TreeBuilder) BuildForest(ctx context.Context, templateID int64) ([]*Section, error) {
	roots, err := b.sections.ListRoots(ctx, templateID)
	if err != nil {
		return nil, err
	}
	for _, root := range roots {
		if err := b.fill(ctx, root); err != nil {
			return nil, err
		}
	}
	if roots == nil {
		roots = []*Section{}
	}
	return roots, nil
}

// fill loads a section's direct fields and children, then recurses. Nesting
// depth is unbounded.
func (b *TreeBuilder) fill(ctx context.Context, sec *Section) error {
	fields, err := b.fields.ListBySection(ctx, sec.ID)
	if err != nil {
		return err
	}
	if fields == nil {
		fields = []*Field{}
	}
	sec.Fields = fields

	children, err := b.sections.ListChildren(ctx, sec.ID)
	if err != nil {
		return err
	}
	if children == nil {
		children = []*Section{}
	}
	sec.Children = children

	for _, child := range children {
		if err := b.fill(ctx, child); err != nil {
			return err
		}
	}
	return nil
}
