package forms

import "context"

// TemplateRepository defines the persistence interface for form templates.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *Template) error
	GetByID(ctx context.Context, id int64) (*Template, error)
	Update(ctx context.Context, tpl *Template) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*Template, int, error)
	ListBySpecialty(ctx context.Context, specialtyID int64, limit, offset int) ([]*Template, int, error)
	// Lock serializes concurrent reconciliations of the same template for
	// the duration of the surrounding transaction. LockShared is the shared
	// counterpart taken by submission writes: submissions run concurrently
	// with each other but never overlap a structural write.
	Lock(ctx context.Context, id int64) error
	LockShared(ctx context.Context, id int64) error
}

// SectionRepository defines the persistence interface for form sections.
// The tree is traversed level by level through ListRoots and ListChildren;
// both return sections ordered by sort_order with id as the stable tie
// breaker.
type SectionRepository interface {
	Create(ctx context.Context, sec *Section) error
	Update(ctx context.Context, sec *Section) error
	Delete(ctx context.Context, id int64) error
	ListRoots(ctx context.Context, templateID int64) ([]*Section, error)
	ListChildren(ctx context.Context, sectionID int64) ([]*Section, error)
}

// FieldRepository defines the persistence interface for form fields.
type FieldRepository interface {
	Create(ctx context.Context, f *Field) error
	GetByID(ctx context.Context, id int64) (*Field, error)
	Update(ctx context.Context, f *Field) error
	Delete(ctx context.Context, id int64) error
	DeleteBySection(ctx context.Context, sectionID int64) error
	ListBySection(ctx context.Context, sectionID int64) ([]*Field, error)
}

// SubmissionRepository defines the persistence interface for submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *Submission) error
	GetByID(ctx context.Context, id int64) (*Submission, error)
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Submission, int, error)
	ListByVisit(ctx context.Context, visitID int64, limit, offset int) ([]*Submission, int, error)
	ListByClinician(ctx context.Context, clinicianID int64, limit, offset int) ([]*Submission, int, error)
	CountByTemplate(ctx context.Context, templateID int64) (int, error)
}

// ResponseRepository defines the persistence interface for responses.
type ResponseRepository interface {
	Create(ctx context.Context, resp *Response) error
	ListBySubmission(ctx context.Context, submissionID int64) ([]*ResponseDetail, error)
}
