package pharmacy

import "context"

// Repository is the persistence contract for prescriptions.
type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id int64) (*Prescription, error)
	Update(ctx context.Context, p *Prescription) error
	Delete(ctx context.Context, id int64) error
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Prescription, int, error)
	ListByVisit(ctx context.Context, visitID int64, limit, offset int) ([]*Prescription, int, error)
}
