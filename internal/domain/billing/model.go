package billing

import "time"

// Invoice statuses.
const (
	StatusDraft  = "draft"
	StatusIssued = "issued"
	StatusPaid   = "paid"
	StatusVoid   = "void"
)

// Invoice maps to the invoice table. Total is derived from the line items.
type Invoice struct {
	ID        int64      `db:"id" json:"id"`
	PatientID int64      `db:"patient_id" json:"patient_id"`
	VisitID   *int64     `db:"visit_id" json:"visit_id,omitempty"`
	Status    string     `db:"status" json:"status"`
	Total     float64    `db:"total" json:"total"`
	IssuedAt  *time.Time `db:"issued_at" json:"issued_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// InvoiceItem maps to the invoice_item table.
type InvoiceItem struct {
	ID          int64   `db:"id" json:"id"`
	InvoiceID   int64   `db:"invoice_id" json:"invoice_id"`
	Description string  `db:"description" json:"description"`
	Quantity    int     `db:"quantity" json:"quantity"`
	UnitPrice   float64 `db:"unit_price" json:"unit_price"`
	Amount      float64 `db:"amount" json:"amount"`
}
