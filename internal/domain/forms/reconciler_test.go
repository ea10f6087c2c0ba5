package forms

import (
	"context"
	"errors"
	"testing"
)

func strPtr(s string) *string { return &s }

// vitalsForest builds a desired forest with one root section holding two
// fields and one child section with one field.
func vitalsForest() []*Section {
	return []*Section{
		{
			Name:      "Vitals",
			SortOrder: 1,
			Fields: []*Field{
				{Name: "BP", FieldType: "text", Unit: strPtr("mmHg"), SortOrder: 1},
				{Name: "Weight", FieldType: "number", Unit: strPtr("kg"), SortOrder: 2},
			},
			Children: []*Section{
				{
					Name:      "Pulse",
					SortOrder: 1,
					Fields: []*Field{
						{Name: "Rate", FieldType: "number", Unit: strPtr("bpm"), SortOrder: 1},
					},
				},
			},
		},
	}
}

func newReconcilerFixture() (*TreeReconciler, *TreeBuilder, *mockSectionRepo, *mockFieldRepo) {
	sections := newMockSectionRepo()
	fields := newMockFieldRepo()
	return NewTreeReconciler(sections, fields), NewTreeBuilder(sections, fields), sections, fields
}

func TestReconcile_CreateFromEmpty(t *testing.T) {
	rec, builder, sections, fields := newReconcilerFixture()
	ctx := context.Background()

	if err := rec.Reconcile(ctx, 1, vitalsForest()); err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	if sections.creates != 2 {
		t.Errorf("expected 2 section inserts, got %d", sections.creates)
	}
	if fields.creates != 3 {
		t.Errorf("expected 3 field inserts, got %d", fields.creates)
	}

	forest, err := builder.BuildForest(ctx, 1)
	if err != nil {
		t.Fatalf("BuildForest() error: %v", err)
	}
	if len(forest) != 1 {
		t.Fatalf("expected 1 root section, got %d", len(forest))
	}
	root := forest[0]
	if root.Name != "Vitals" {
		t.Errorf("expected root Vitals, got %s", root.Name)
	}
	if len(root.Fields) != 2 || root.Fields[0].Name != "BP" || root.Fields[1].Name != "Weight" {
		t.Errorf("unexpected root fields: %+v", root.Fields)
	}
	if len(root.Children) != 1 || root.Children[0].Name != "Pulse" {
		t.Fatalf("unexpected children: %+v", root.Children)
	}
	if len(root.Children[0].Fields) != 1 || root.Children[0].Fields[0].Name != "Rate" {
		t.Errorf("unexpected child fields: %+v", root.Children[0].Fields)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	rec, builder, sections, fields := newReconcilerFixture()
	ctx := context.Background()

	if err := rec.Reconcile(ctx, 1, vitalsForest()); err != nil {
		t.Fatalf("first Reconcile() error: %v", err)
	}

	// Re-submit exactly what the first pass persisted, ids included.
	forest, err := builder.BuildForest(ctx, 1)
	if err != nil {
		t.Fatalf("BuildForest() error: %v", err)
	}

	creates, deletes := sections.creates, sections.deletes
	fCreates, fDeletes := fields.creates, fields.deletes

	if err := rec.Reconcile(ctx, 1, forest); err != nil {
		t.Fatalf("second Reconcile() error: %v", err)
	}

	if sections.creates != creates || sections.deletes != deletes {
		t.Errorf("expected no section inserts/deletes on idempotent pass, got +%d/+%d",
			sections.creates-creates, sections.deletes-deletes)
	}
	if fields.creates != fCreates || fields.deletes != fDeletes {
		t.Errorf("expected no field inserts/deletes on idempotent pass, got +%d/+%d",
			fields.creates-fCreates, fields.deletes-fDeletes)
	}
}

func TestReconcile_PreservesIdentityOfResubmittedField(t *testing.T) {
	rec, builder, _, _ := newReconcilerFixture()
	ctx := context.Background()

	if err := rec.Reconcile(ctx, 1, vitalsForest()); err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}
	forest, _ := builder.BuildForest(ctx, 1)
	root := forest[0]
	keptID := root.Fields[0].ID
	droppedID := root.Fields[1].ID

	// Replace the second field with a new one, re-submit the first by id.
	root.Fields = []*Field{
		{ID: keptID, Name: "BP", FieldType: "text", Unit: strPtr("mmHg"), SortOrder: 1},
		{Name: "Height", FieldType: "number", Unit: strPtr("cm"), SortOrder: 2},
	}
	if err := rec.Reconcile(ctx, 1, forest); err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	after, _ := builder.BuildForest(ctx, 1)
	got := after[0].Fields
	if len(got) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(got))
	}
	if got[0].ID != keptID {
		t.Errorf("expected resubmitted field to keep id %d, got %d", keptID, got[0].ID)
	}
	for _, f := range got {
		if f.ID == droppedID {
			t.Errorf("expected unreferenced field %d to be deleted", droppedID)
		}
	}
	if got[1].Name != "Height" {
		t.Errorf("expected new field Height, got %s", got[1].Name)
	}
}

func TestReconcile_RemovedSubtreeIsDeleted(t *testing.T) {
	rec, builder, sections, fields := newReconcilerFixture()
	ctx := context.Background()

	if err := rec.Reconcile(ctx, 1, vitalsForest()); err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}
	forest, _ := builder.BuildForest(ctx, 1)

	// Drop the Pulse subtree from the desired forest.
	forest[0].Children = nil
	if err := rec.Reconcile(ctx, 1, forest); err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	after, _ := builder.BuildForest(ctx, 1)
	if len(after[0].Children) != 0 {
		t.Fatalf("expected no children after subtree removal, got %d", len(after[0].Children))
	}
	if len(sections.sections) != 1 {
		t.Errorf("expected 1 persisted section, got %d", len(sections.sections))
	}
	// Rate, the descendant field, must be gone too.
	for _, f := range fields.fields {
		if f.Name == "Rate" {
			t.Error("expected descendant field Rate to be deleted with its section")
		}
	}
}

func TestReconcile_EmptyDesiredForestDeletesEverything(t *testing.T) {
	rec, _, sections, fields := newReconcilerFixture()
	ctx := context.Background()

	if err := rec.Reconcile(ctx, 1, vitalsForest()); err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}
	if err := rec.Reconcile(ctx, 1, nil); err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	if len(sections.sections) != 0 {
		t.Errorf("expected all sections deleted, %d remain", len(sections.sections))
	}
	if len(fields.fields) != 0 {
		t.Errorf("expected all fields deleted, %d remain", len(fields.fields))
	}
}

func TestReconcile_EmptiedFieldListClearsSection(t *testing.T) {
	rec, builder, _, _ := newReconcilerFixture()
	ctx := context.Background()

	if err := rec.Reconcile(ctx, 1, vitalsForest()); err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}
	forest, _ := builder.BuildForest(ctx, 1)

	// Keep the Vitals section by id but submit its field list empty.
	forest[0].Fields = nil
	if err := rec.Reconcile(ctx, 1, forest); err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	after, _ := builder.BuildForest(ctx, 1)
	if len(after) != 1 || after[0].Name != "Vitals" {
		t.Fatalf("expected Vitals section to survive, got %+v", after)
	}
	if len(after[0].Fields) != 0 {
		t.Errorf("expected zero fields, got %d", len(after[0].Fields))
	}
}

func TestReconcile_UnknownIDInsertsAsNew(t *testing.T) {
	rec, builder, _, _ := newReconcilerFixture()
	ctx := context.Background()

	// Desired node carries an id that does not exist among current children.
	desired := []*Section{{ID: 999, Name: "Exam", SortOrder: 1}}
	if err := rec.Reconcile(ctx, 1, desired); err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	forest, _ := builder.BuildForest(ctx, 1)
	if len(forest) != 1 {
		t.Fatalf("expected 1 section, got %d", len(forest))
	}
	if forest[0].ID == 999 {
		t.Error("expected a freshly assigned id, not the caller-supplied unknown one")
	}
}

func TestReconcile_UpdatesMutableAttributes(t *testing.T) {
	rec, builder, _, _ := newReconcilerFixture()
	ctx := context.Background()

	if err := rec.Reconcile(ctx, 1, vitalsForest()); err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}
	forest, _ := builder.BuildForest(ctx, 1)

	forest[0].Name = "Vital Signs"
	forest[0].SortOrder = 5
	forest[0].Fields[0].Required = true
	forest[0].Fields[0].Options = strPtr("sitting,standing")
	if err := rec.Reconcile(ctx, 1, forest); err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	after, _ := builder.BuildForest(ctx, 1)
	if after[0].Name != "Vital Signs" || after[0].SortOrder != 5 {
		t.Errorf("expected updated section attributes, got %+v", after[0])
	}
	f := after[0].Fields[0]
	if !f.Required || f.Options == nil || *f.Options != "sitting,standing" {
		t.Errorf("expected updated field attributes, got %+v", f)
	}
}

func TestReconcile_RejectsUnnamedSection(t *testing.T) {
	rec, _, _, _ := newReconcilerFixture()
	err := rec.Reconcile(context.Background(), 1, []*Section{{Name: ""}})
	if !errors.Is(err, ErrSectionNameRequired) {
		t.Fatalf("expected ErrSectionNameRequired, got %v", err)
	}
}

func TestReconcile_RejectsUnnamedField(t *testing.T) {
	rec, _, _, _ := newReconcilerFixture()
	desired := []*Section{{Name: "Vitals", Fields: []*Field{{Name: ""}}}}
	err := rec.Reconcile(context.Background(), 1, desired)
	if !errors.Is(err, ErrFieldNameRequired) {
		t.Fatalf("expected ErrFieldNameRequired, got %v", err)
	}
}
