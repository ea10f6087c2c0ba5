package visit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("visit not found")

var validStatuses = map[string]bool{
	StatusScheduled:  true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateVisit(ctx context.Context, v *Visit) error {
	if v.PatientID == 0 {
		return fmt.Errorf("patient_id is required")
	}
	if v.ClinicianID == 0 {
		return fmt.Errorf("clinician_id is required")
	}
	if v.Status == "" {
		v.Status = StatusScheduled
	}
	if !validStatuses[v.Status] {
		return fmt.Errorf("invalid status: %s", v.Status)
	}
	if v.StartedAt.IsZero() {
		v.StartedAt = time.Now().UTC()
	}
	return s.repo.Create(ctx, v)
}

func (s *Service) GetVisit(ctx context.Context, id int64) (*Visit, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateVisit(ctx context.Context, v *Visit) error {
	if v.Status != "" && !validStatuses[v.Status] {
		return fmt.Errorf("invalid status: %s", v.Status)
	}
	return s.repo.Update(ctx, v)
}

// UpdateVisitStatus transitions a visit; completing stamps ended_at.
func (s *Service) UpdateVisitStatus(ctx context.Context, id int64, newStatus string) error {
	if !validStatuses[newStatus] {
		return fmt.Errorf("invalid status: %s", newStatus)
	}
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	v.Status = newStatus
	if (newStatus == StatusCompleted || newStatus == StatusCancelled) && v.EndedAt == nil {
		now := time.Now().UTC()
		v.EndedAt = &now
	}
	return s.repo.Update(ctx, v)
}

func (s *Service) DeleteVisit(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListVisits(ctx context.Context, limit, offset int) ([]*Visit, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListVisitsByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Visit, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListVisitsByClinician(ctx context.Context, clinicianID int64, limit, offset int) ([]*Visit, int, error) {
	return s.repo.ListByClinician(ctx, clinicianID, limit, offset)
}
