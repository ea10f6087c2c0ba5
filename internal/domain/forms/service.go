package forms

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
)

// Service orchestrates the form template engine: structural create/update/
// delete behind the mutation guard, structure reads, and the submission
// pipeline behind the access validator. Structural writes and submissions
// each run in a single transaction.
type Service struct {
	pool        *pgxpool.Pool
	templates   TemplateRepository
	submissions SubmissionRepository
	responses   ResponseRepository
	fields      FieldRepository
	builder     *TreeBuilder
	reconciler  *TreeReconciler
	guard       *MutationGuard
	access      *AccessValidator
}

func NewService(
	pool *pgxpool.Pool,
	templates TemplateRepository,
	sections SectionRepository,
	fields FieldRepository,
	submissions SubmissionRepository,
	responses ResponseRepository,
	access *AccessValidator,
) *Service {
	return &Service{
		pool:        pool,
		templates:   templates,
		submissions: submissions,
		responses:   responses,
		fields:      fields,
		builder:     NewTreeBuilder(sections, fields),
		reconciler:  NewTreeReconciler(sections, fields),
		guard:       NewMutationGuard(submissions),
		access:      access,
	}
}

// inTx runs fn in a single transaction. Without a pool (mock-backed tests)
// fn runs directly.
func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.pool == nil && db.ConnFromContext(ctx) == nil && db.TxFromContext(ctx) == nil {
		return fn(ctx)
	}
	return db.RunInTx(ctx, s.pool, fn)
}

// -- Templates --

// CreateTemplate persists a new template together with its full desired
// forest. Everything is an insert: a brand-new template has no persisted
// sections to reconcile against.
func (s *Service) CreateTemplate(ctx context.Context, tpl *Template, forest []*Section) (*Template, error) {
	if tpl.Name == "" {
		return nil, ErrTemplateNameRequired
	}

	err := s.inTx(ctx, func(ctx context.Context) error {
		if err := s.templates.Create(ctx, tpl); err != nil {
			return err
		}
		return s.reconciler.Reconcile(ctx, tpl.ID, forest)
	})
	if err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *Service) GetTemplate(ctx context.Context, id int64) (*Template, error) {
	tpl, err := s.templates.GetByID(ctx, id)
	if errors.Is(err, ErrTemplateNotFound) || (err == nil && tpl == nil) {
		return nil, fmt.Errorf("template %d: %w", id, ErrTemplateNotFound)
	}
	if err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *Service) ListTemplates(ctx context.Context, limit, offset int) ([]*Template, int, error) {
	return s.templates.List(ctx, limit, offset)
}

func (s *Service) ListTemplatesBySpecialty(ctx context.Context, specialtyID int64, limit, offset int) ([]*Template, int, error) {
	return s.templates.ListBySpecialty(ctx, specialtyID, limit, offset)
}

// GetStructure returns the template with its full ordered forest.
func (s *Service) GetStructure(ctx context.Context, id int64) (*Template, []*Section, error) {
	tpl, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	forest, err := s.builder.BuildForest(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return tpl, forest, nil
}

// UpdateTemplate replaces the template's attributes and reconciles its forest
// against the desired one, preserving ids of re-submitted nodes. Blocked once
// the template has submissions.
func (s *Service) UpdateTemplate(ctx context.Context, id int64, tpl *Template, forest []*Section) (*Template, error) {
	if tpl.Name == "" {
		return nil, ErrTemplateNameRequired
	}
	existing, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = tpl.Name
	existing.Description = tpl.Description
	existing.SpecialtyID = tpl.SpecialtyID
	existing.Price = tpl.Price

	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.templates.Lock(ctx, id); err != nil {
			return err
		}
		// Checked under the lock so a submission cannot land between the
		// count and the structural write.
		if err := s.guard.AssertMutable(ctx, id); err != nil {
			return err
		}
		if err := s.templates.Update(ctx, existing); err != nil {
			return err
		}
		return s.reconciler.Reconcile(ctx, id, forest)
	})
	if err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteTemplate removes the template and its whole forest. Blocked once the
// template has submissions.
func (s *Service) DeleteTemplate(ctx context.Context, id int64) error {
	if _, err := s.GetTemplate(ctx, id); err != nil {
		return err
	}

	return s.inTx(ctx, func(ctx context.Context) error {
		if err := s.templates.Lock(ctx, id); err != nil {
			return err
		}
		if err := s.guard.AssertMutable(ctx, id); err != nil {
			return err
		}
		// Empty desired forest: the reconciler deletes every section
		// subtree of the template.
		if err := s.reconciler.Reconcile(ctx, id, nil); err != nil {
			return err
		}
		return s.templates.Delete(ctx, id)
	})
}

// -- Submissions --

// Submit validates access, persists the submission with one response per
// answer, and returns the submission with its freshly-loaded response
// details. Nothing is written when validation fails. Re-submission for the
// same patient/template/visit/clinician is deliberately not deduplicated.
func (s *Service) Submit(ctx context.Context, clinicianID int64, req SubmitRequest) (*Submission, []*ResponseDetail, error) {
	if len(req.Answers) == 0 {
		return nil, nil, ErrNoAnswers
	}
	if err := s.access.CanSubmit(ctx, clinicianID, req.TemplateID, req.PatientID, req.VisitID); err != nil {
		return nil, nil, err
	}

	sub := &Submission{
		PatientID:   req.PatientID,
		TemplateID:  req.TemplateID,
		ClinicianID: clinicianID,
		VisitID:     req.VisitID,
		Status:      SubmissionStatusSubmitted,
	}

	err := s.inTx(ctx, func(ctx context.Context) error {
		// Shared lock: submissions do not exclude each other, but they do
		// exclude structural writes, which hold the exclusive lock while
		// they re-check the in-use count.
		if err := s.templates.LockShared(ctx, req.TemplateID); err != nil {
			return err
		}
		if err := s.submissions.Create(ctx, sub); err != nil {
			return err
		}
		for _, ans := range req.Answers {
			field, err := s.fields.GetByID(ctx, ans.FieldID)
			if errors.Is(err, ErrFieldNotFound) || (err == nil && field == nil) {
				return fmt.Errorf("field %d: %w", ans.FieldID, ErrFieldNotFound)
			}
			if err != nil {
				return err
			}
			resp := &Response{
				SubmissionID: sub.ID,
				FieldID:      field.ID,
				SectionID:    field.SectionID,
				Value:        ans.Value,
			}
			if err := s.responses.Create(ctx, resp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	details, err := s.responses.ListBySubmission(ctx, sub.ID)
	if err != nil {
		return nil, nil, err
	}
	return sub, details, nil
}

// GetSubmission reloads a submission with its responses joined with field
// metadata. callerClinicianID gates access to the submitting clinician;
// bypassAccess is set by the handler for administrative and front-desk roles.
func (s *Service) GetSubmission(ctx context.Context, id, callerClinicianID int64, bypassAccess bool) (*Submission, []*ResponseDetail, error) {
	sub, err := s.submissions.GetByID(ctx, id)
	if errors.Is(err, ErrSubmissionNotFound) || (err == nil && sub == nil) {
		return nil, nil, fmt.Errorf("submission %d: %w", id, ErrSubmissionNotFound)
	}
	if err != nil {
		return nil, nil, err
	}
	if !bypassAccess {
		if err := s.access.CanAccess(callerClinicianID, sub); err != nil {
			return nil, nil, err
		}
	}
	details, err := s.responses.ListBySubmission(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return sub, details, nil
}

func (s *Service) ListSubmissionsByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Submission, int, error) {
	return s.submissions.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListSubmissionsByVisit(ctx context.Context, visitID int64, limit, offset int) ([]*Submission, int, error) {
	return s.submissions.ListByVisit(ctx, visitID, limit, offset)
}

func (s *Service) ListSubmissionsByClinician(ctx context.Context, clinicianID int64, limit, offset int) ([]*Submission, int, error) {
	return s.submissions.ListByClinician(ctx, clinicianID, limit, offset)
}
