package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("prescription not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreatePrescription(ctx context.Context, p *Prescription) error {
	if p.PatientID == 0 {
		return fmt.Errorf("patient_id is required")
	}
	if p.VisitID == 0 {
		return fmt.Errorf("visit_id is required")
	}
	if p.ClinicianID == 0 {
		return fmt.Errorf("clinician_id is required")
	}
	if strings.TrimSpace(p.MedicationName) == "" {
		return fmt.Errorf("medication_name is required")
	}
	if strings.TrimSpace(p.Dosage) == "" {
		return fmt.Errorf("dosage is required")
	}
	if p.PrescribedAt.IsZero() {
		p.PrescribedAt = time.Now().UTC()
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) GetPrescription(ctx context.Context, id int64) (*Prescription, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdatePrescription(ctx context.Context, p *Prescription) error {
	if strings.TrimSpace(p.MedicationName) == "" {
		return fmt.Errorf("medication_name is required")
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) DeletePrescription(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListPrescriptionsByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Prescription, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListPrescriptionsByVisit(ctx context.Context, visitID int64, limit, offset int) ([]*Prescription, int, error) {
	return s.repo.ListByVisit(ctx, visitID, limit, offset)
}
