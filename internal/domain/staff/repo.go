package staff

import "context"

type SpecialtyRepository interface {
	Create(ctx context.Context, sp *Specialty) error
	GetByID(ctx context.Context, id int64) (*Specialty, error)
	Update(ctx context.Context, sp *Specialty) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*Specialty, error)
}

type ClinicianRepository interface {
	Create(ctx context.Context, cl *Clinician) error
	GetByID(ctx context.Context, id int64) (*Clinician, error)
	GetByUserID(ctx context.Context, userID string) (*Clinician, error)
	Update(ctx context.Context, cl *Clinician) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*Clinician, int, error)
	ListBySpecialty(ctx context.Context, specialtyID int64, limit, offset int) ([]*Clinician, int, error)
}
