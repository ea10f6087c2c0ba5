package forms

import (
	"context"
	"errors"
	"fmt"
)

// VisitInfo is the slice of a visit the access validator needs.
type VisitInfo struct {
	ID          int64
	PatientID   int64
	ClinicianID int64
}

// ClinicianInfo is the slice of a clinician record the access validator needs.
type ClinicianInfo struct {
	ID          int64
	SpecialtyID int64
}

// VisitDirectory looks up visits. Implemented by the visit service and wired
// in main through an adapter.
type VisitDirectory interface {
	VisitInfo(ctx context.Context, visitID int64) (*VisitInfo, error)
}

// ClinicianDirectory looks up clinicians. Implemented by the staff service
// and wired in main through an adapter.
type ClinicianDirectory interface {
	ClinicianInfo(ctx context.Context, clinicianID int64) (*ClinicianInfo, error)
}

// AccessValidator decides whether a clinician may submit or read a filled
// form. universalTemplateID names the one template (vitals/biometrics) exempt
// from the specialty check; zero disables the exemption.
type AccessValidator struct {
	templates           TemplateRepository
	visits              VisitDirectory
	clinicians          ClinicianDirectory
	universalTemplateID int64
}

func NewAccessValidator(templates TemplateRepository, visits VisitDirectory, clinicians ClinicianDirectory, universalTemplateID int64) *AccessValidator {
	return &AccessValidator{
		templates:           templates,
		visits:              visits,
		clinicians:          clinicians,
		universalTemplateID: universalTemplateID,
	}
}

// CanSubmit checks that the visit exists, is assigned to the clinician, and
// belongs to the named patient, and that the clinician's specialty matches
// the template's unless the template is the designated universal one.
func (v *AccessValidator) CanSubmit(ctx context.Context, clinicianID, templateID, patientID, visitID int64) error {
	visit, err := v.visits.VisitInfo(ctx, visitID)
	if errors.Is(err, ErrVisitNotFound) || (err == nil && visit == nil) {
		return fmt.Errorf("visit %d: %w", visitID, ErrVisitNotFound)
	}
	if err != nil {
		return err
	}
	if visit.ClinicianID != clinicianID {
		return fmt.Errorf("visit %d: %w", visitID, ErrNotAssigned)
	}
	if visit.PatientID != patientID {
		return fmt.Errorf("visit %d: %w", visitID, ErrWrongPatient)
	}

	if templateID == v.universalTemplateID && v.universalTemplateID != 0 {
		return nil
	}

	tpl, err := v.templates.GetByID(ctx, templateID)
	if errors.Is(err, ErrTemplateNotFound) || (err == nil && tpl == nil) {
		return fmt.Errorf("template %d: %w", templateID, ErrTemplateNotFound)
	}
	if err != nil {
		return err
	}

	clin, err := v.clinicians.ClinicianInfo(ctx, clinicianID)
	if errors.Is(err, ErrClinicianNotFound) || (err == nil && clin == nil) {
		return fmt.Errorf("clinician %d: %w", clinicianID, ErrClinicianNotFound)
	}
	if err != nil {
		return err
	}
	if clin.SpecialtyID != tpl.SpecialtyID {
		return fmt.Errorf("template %d: %w", templateID, ErrWrongSpecialty)
	}
	return nil
}

// CanAccess allows a clinician to read a submission only if they created it.
// Administrative and front-desk roles bypass this at the handler layer.
func (v *AccessValidator) CanAccess(clinicianID int64, sub *Submission) error {
	if sub.ClinicianID != clinicianID {
		return fmt.Errorf("submission %d: %w", sub.ID, ErrForbidden)
	}
	return nil
}
