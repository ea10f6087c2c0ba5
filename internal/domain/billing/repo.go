package billing

import "context"

type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id int64) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*Invoice, int, error)
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Invoice, int, error)

	AddItem(ctx context.Context, item *InvoiceItem) error
	ListItems(ctx context.Context, invoiceID int64) ([]*InvoiceItem, error)
	RemoveItem(ctx context.Context, id int64) error
}
