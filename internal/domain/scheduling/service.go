package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("appointment not found")

var validStatuses = map[string]bool{
	StatusBooked:    true,
	StatusArrived:   true,
	StatusFulfilled: true,
	StatusCancelled: true,
	StatusNoShow:    true,
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) error {
	if a.PatientID == 0 {
		return fmt.Errorf("patient_id is required")
	}
	if a.ClinicianID == 0 {
		return fmt.Errorf("clinician_id is required")
	}
	if a.ScheduledAt.IsZero() {
		return fmt.Errorf("scheduled_at is required")
	}
	if a.DurationMinutes <= 0 {
		a.DurationMinutes = 30
	}
	if a.Status == "" {
		a.Status = StatusBooked
	}
	if !validStatuses[a.Status] {
		return fmt.Errorf("invalid status: %s", a.Status)
	}
	return s.repo.Create(ctx, a)
}

func (s *Service) GetAppointment(ctx context.Context, id int64) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateAppointment(ctx context.Context, a *Appointment) error {
	if a.Status != "" && !validStatuses[a.Status] {
		return fmt.Errorf("invalid status: %s", a.Status)
	}
	return s.repo.Update(ctx, a)
}

func (s *Service) CancelAppointment(ctx context.Context, id int64) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	a.Status = StatusCancelled
	return s.repo.Update(ctx, a)
}

func (s *Service) DeleteAppointment(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListAppointmentsByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListAppointmentsByClinician(ctx context.Context, clinicianID int64, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByClinician(ctx, clinicianID, limit, offset)
}

func (s *Service) ListAppointmentsByDay(ctx context.Context, day time.Time, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByDay(ctx, day, limit, offset)
}
