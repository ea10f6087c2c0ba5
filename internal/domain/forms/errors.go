package forms

import "errors"

var (
	ErrTemplateNotFound   = errors.New("template not found")
	ErrFieldNotFound      = errors.New("field not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrVisitNotFound      = errors.New("visit not found")
	ErrClinicianNotFound  = errors.New("clinician not found")

	// ErrTemplateInUse guards structural mutation of a template that is
	// already referenced by at least one submission.
	ErrTemplateInUse = errors.New("template has submissions and cannot be modified")

	ErrNotAssigned    = errors.New("clinician not assigned to this visit")
	ErrWrongPatient   = errors.New("visit belongs to another patient")
	ErrWrongSpecialty = errors.New("wrong specialty for this template")
	ErrForbidden      = errors.New("submission belongs to another clinician")

	ErrTemplateNameRequired = errors.New("template name is required")
	ErrSectionNameRequired  = errors.New("section name is required")
	ErrFieldNameRequired    = errors.New("field name is required")
	ErrNoAnswers            = errors.New("at least one answer is required")
)
