package forms

import "time"

// Template maps to the form_template table. A template is the named, priced,
// specialty-scoped definition of a clinical form and owns a forest of
// sections.
type Template struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	SpecialtyID int64     `db:"specialty_id" json:"specialty_id"`
	Price       float64   `db:"price" json:"price"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Section maps to the form_section table. Sections nest arbitrarily deep via
// ParentID; a nil ParentID marks a root section of its template. In a desired
// forest submitted by a caller, ID zero marks a node to be created.
type Section struct {
	ID          int64    `db:"id" json:"id"`
	TemplateID  int64    `db:"template_id" json:"template_id"`
	ParentID    *int64   `db:"parent_section_id" json:"parent_section_id,omitempty"`
	Name        string   `db:"name" json:"name"`
	Description *string  `db:"description" json:"description,omitempty"`
	SortOrder   int      `db:"sort_order" json:"sort_order"`

	Fields   []*Field   `db:"-" json:"fields"`
	Children []*Section `db:"-" json:"sections"`
}

// Field maps to the form_field table. One question/input definition belonging
// to exactly one section. Options is a comma-joined list of allowed values
// for select-like types; Unit is a measurement unit such as "kg" or "mmHg".
type Field struct {
	ID          int64   `db:"id" json:"id"`
	SectionID   int64   `db:"section_id" json:"section_id"`
	Name        string  `db:"name" json:"name"`
	FieldType   string  `db:"field_type" json:"field_type"`
	Required    bool    `db:"required" json:"required"`
	Placeholder *string `db:"placeholder" json:"placeholder,omitempty"`
	SortOrder   int     `db:"sort_order" json:"sort_order"`
	Options     *string `db:"options" json:"options,omitempty"`
	Unit        *string `db:"unit" json:"unit,omitempty"`
}

// Submission maps to the form_submission table: one filled instance of a
// template for one patient/visit/clinician. Submissions reference their
// template by id only and are never structurally edited after creation.
type Submission struct {
	ID          int64     `db:"id" json:"id"`
	PatientID   int64     `db:"patient_id" json:"patient_id"`
	TemplateID  int64     `db:"template_id" json:"template_id"`
	ClinicianID int64     `db:"clinician_id" json:"clinician_id"`
	VisitID     int64     `db:"visit_id" json:"visit_id"`
	Status      string    `db:"status" json:"status"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
}

// Response maps to the form_response table: one answer to one field within
// one submission. SectionID is copied from the field at submission time so
// answers group by section without a join against a tree that may since have
// changed.
type Response struct {
	ID           int64  `db:"id" json:"id"`
	SubmissionID int64  `db:"submission_id" json:"submission_id"`
	FieldID      int64  `db:"field_id" json:"field_id"`
	SectionID    int64  `db:"section_id" json:"section_id"`
	Value        string `db:"value" json:"value"`
}

// Answer is one field answer in a submit request.
type Answer struct {
	FieldID int64  `json:"field_id"`
	Value   string `json:"value"`
}

// ResponseDetail is the read model for a response joined with its field
// metadata. FieldName, FieldType and Unit are empty when the field has since
// been removed from the template forest.
type ResponseDetail struct {
	Response
	FieldName string  `json:"field_name"`
	FieldType string  `json:"field_type"`
	Unit      *string `json:"unit,omitempty"`
}

// SubmitRequest is the submit operation input.
type SubmitRequest struct {
	PatientID  int64    `json:"patient_id"`
	TemplateID int64    `json:"template_id"`
	VisitID    int64    `json:"visit_id"`
	Answers    []Answer `json:"answers"`
}

// Submission statuses.
const (
	SubmissionStatusSubmitted = "submitted"
)
