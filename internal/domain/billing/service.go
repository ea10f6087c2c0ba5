package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("invoice not found")
	ErrItemNotFound = errors.New("invoice item not found")
	ErrNotDraft     = errors.New("invoice is not editable")
)

var validStatuses = map[string]bool{
	StatusDraft:  true,
	StatusIssued: true,
	StatusPaid:   true,
	StatusVoid:   true,
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateInvoice(ctx context.Context, inv *Invoice) error {
	if inv.PatientID == 0 {
		return fmt.Errorf("patient_id is required")
	}
	if inv.Status == "" {
		inv.Status = StatusDraft
	}
	if !validStatuses[inv.Status] {
		return fmt.Errorf("invalid status: %s", inv.Status)
	}
	return s.repo.Create(ctx, inv)
}

func (s *Service) GetInvoice(ctx context.Context, id int64) (*Invoice, []*InvoiceItem, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.repo.ListItems(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return inv, items, nil
}

// IssueInvoice moves a draft to issued and stamps issued_at.
func (s *Service) IssueInvoice(ctx context.Context, id int64) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != StatusDraft {
		return nil, fmt.Errorf("invoice %d: %w", id, ErrNotDraft)
	}
	now := time.Now().UTC()
	inv.Status = StatusIssued
	inv.IssuedAt = &now
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) MarkPaid(ctx context.Context, id int64) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Status = StatusPaid
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) DeleteInvoice(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListInvoices(ctx context.Context, limit, offset int) ([]*Invoice, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListInvoicesByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Invoice, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// AddItem appends a line item to a draft invoice and recomputes the total.
func (s *Service) AddItem(ctx context.Context, item *InvoiceItem) error {
	if strings.TrimSpace(item.Description) == "" {
		return fmt.Errorf("description is required")
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if item.UnitPrice < 0 {
		return fmt.Errorf("unit_price must not be negative")
	}
	inv, err := s.repo.GetByID(ctx, item.InvoiceID)
	if err != nil {
		return err
	}
	if inv.Status != StatusDraft {
		return fmt.Errorf("invoice %d: %w", inv.ID, ErrNotDraft)
	}
	item.Amount = float64(item.Quantity) * item.UnitPrice
	if err := s.repo.AddItem(ctx, item); err != nil {
		return err
	}
	return s.recomputeTotal(ctx, inv)
}

func (s *Service) RemoveItem(ctx context.Context, invoiceID, itemID int64) error {
	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if inv.Status != StatusDraft {
		return fmt.Errorf("invoice %d: %w", inv.ID, ErrNotDraft)
	}
	if err := s.repo.RemoveItem(ctx, itemID); err != nil {
		return err
	}
	return s.recomputeTotal(ctx, inv)
}

func (s *Service) recomputeTotal(ctx context.Context, inv *Invoice) error {
	items, err := s.repo.ListItems(ctx, inv.ID)
	if err != nil {
		return err
	}
	var total float64
	for _, item := range items {
		total += item.Amount
	}
	inv.Total = total
	return s.repo.Update(ctx, inv)
}
