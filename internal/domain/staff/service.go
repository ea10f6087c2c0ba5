package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSpecialtyNotFound = errors.New("specialty not found")
	ErrClinicianNotFound = errors.New("clinician not found")
)

type Service struct {
	specialties SpecialtyRepository
	clinicians  ClinicianRepository
}

func NewService(specialties SpecialtyRepository, clinicians ClinicianRepository) *Service {
	return &Service{specialties: specialties, clinicians: clinicians}
}

// -- Specialties --

func (s *Service) CreateSpecialty(ctx context.Context, sp *Specialty) error {
	if strings.TrimSpace(sp.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return s.specialties.Create(ctx, sp)
}

func (s *Service) GetSpecialty(ctx context.Context, id int64) (*Specialty, error) {
	return s.specialties.GetByID(ctx, id)
}

func (s *Service) UpdateSpecialty(ctx context.Context, sp *Specialty) error {
	if strings.TrimSpace(sp.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return s.specialties.Update(ctx, sp)
}

func (s *Service) DeleteSpecialty(ctx context.Context, id int64) error {
	return s.specialties.Delete(ctx, id)
}

func (s *Service) ListSpecialties(ctx context.Context) ([]*Specialty, error) {
	return s.specialties.List(ctx)
}

// -- Clinicians --

func (s *Service) CreateClinician(ctx context.Context, cl *Clinician) error {
	if strings.TrimSpace(cl.FirstName) == "" || strings.TrimSpace(cl.LastName) == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if cl.SpecialtyID == 0 {
		return fmt.Errorf("specialty_id is required")
	}
	if _, err := s.specialties.GetByID(ctx, cl.SpecialtyID); err != nil {
		return err
	}
	return s.clinicians.Create(ctx, cl)
}

func (s *Service) GetClinician(ctx context.Context, id int64) (*Clinician, error) {
	return s.clinicians.GetByID(ctx, id)
}

// GetClinicianByUserID resolves the clinician record behind an auth subject.
func (s *Service) GetClinicianByUserID(ctx context.Context, userID string) (*Clinician, error) {
	return s.clinicians.GetByUserID(ctx, userID)
}

func (s *Service) UpdateClinician(ctx context.Context, cl *Clinician) error {
	if strings.TrimSpace(cl.FirstName) == "" || strings.TrimSpace(cl.LastName) == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if _, err := s.specialties.GetByID(ctx, cl.SpecialtyID); err != nil {
		return err
	}
	return s.clinicians.Update(ctx, cl)
}

func (s *Service) DeleteClinician(ctx context.Context, id int64) error {
	return s.clinicians.Delete(ctx, id)
}

func (s *Service) ListClinicians(ctx context.Context, limit, offset int) ([]*Clinician, int, error) {
	return s.clinicians.List(ctx, limit, offset)
}

func (s *Service) ListCliniciansBySpecialty(ctx context.Context, specialtyID int64, limit, offset int) ([]*Clinician, int, error) {
	return s.clinicians.ListBySpecialty(ctx, specialtyID, limit, offset)
}
