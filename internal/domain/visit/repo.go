package visit

import "context"

// Repository is the persistence contract for visits.
type Repository interface {
	Create(ctx context.Context, v *Visit) error
	GetByID(ctx context.Context, id int64) (*Visit, error)
	Update(ctx context.Context, v *Visit) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*Visit, int, error)
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Visit, int, error)
	ListByClinician(ctx context.Context, clinicianID int64, limit, offset int) ([]*Visit, int, error)
}
