package billing

import (
	"context"
	"errors"
	"testing"
)

type mockRepo struct {
	invoices   map[int64]*Invoice
	items      map[int64]*InvoiceItem
	nextInvID  int64
	nextItemID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		invoices: make(map[int64]*Invoice),
		items:    make(map[int64]*InvoiceItem),
	}
}

func (m *mockRepo) Create(_ context.Context, inv *Invoice) error {
	m.nextInvID++
	inv.ID = m.nextInvID
	cp := *inv
	m.invoices[inv.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, inv *Invoice) error {
	if _, ok := m.invoices[inv.ID]; !ok {
		return ErrNotFound
	}
	cp := *inv
	m.invoices[inv.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.invoices[id]; !ok {
		return ErrNotFound
	}
	delete(m.invoices, id)
	for itemID, item := range m.items {
		if item.InvoiceID == id {
			delete(m.items, itemID)
		}
	}
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Invoice, int, error) {
	out := make([]*Invoice, 0, len(m.invoices))
	for _, inv := range m.invoices {
		cp := *inv
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID int64, limit, offset int) ([]*Invoice, int, error) {
	out := make([]*Invoice, 0)
	for _, inv := range m.invoices {
		if inv.PatientID == patientID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) AddItem(_ context.Context, item *InvoiceItem) error {
	m.nextItemID++
	item.ID = m.nextItemID
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *mockRepo) ListItems(_ context.Context, invoiceID int64) ([]*InvoiceItem, error) {
	out := make([]*InvoiceItem, 0)
	for _, item := range m.items {
		if item.InvoiceID == invoiceID {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockRepo) RemoveItem(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

func draftInvoice(t *testing.T, svc *Service) *Invoice {
	t.Helper()
	inv := &Invoice{PatientID: 3}
	if err := svc.CreateInvoice(context.Background(), inv); err != nil {
		t.Fatalf("CreateInvoice() error: %v", err)
	}
	return inv
}

func TestCreateInvoice_DefaultsToDraft(t *testing.T) {
	svc := NewService(newMockRepo())
	inv := draftInvoice(t, svc)
	if inv.Status != StatusDraft {
		t.Errorf("expected draft status, got %q", inv.Status)
	}
}

func TestAddItem_RecomputesTotal(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()
	inv := draftInvoice(t, svc)

	if err := svc.AddItem(ctx, &InvoiceItem{InvoiceID: inv.ID, Description: "Consultation", Quantity: 1, UnitPrice: 150}); err != nil {
		t.Fatalf("AddItem() error: %v", err)
	}
	if err := svc.AddItem(ctx, &InvoiceItem{InvoiceID: inv.ID, Description: "ECG", Quantity: 2, UnitPrice: 40}); err != nil {
		t.Fatalf("AddItem() error: %v", err)
	}

	got, items, err := svc.GetInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatalf("GetInvoice() error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if got.Total != 230 {
		t.Errorf("expected total 230, got %v", got.Total)
	}
}

func TestRemoveItem_RecomputesTotal(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()
	inv := draftInvoice(t, svc)

	item := &InvoiceItem{InvoiceID: inv.ID, Description: "Consultation", Quantity: 1, UnitPrice: 150}
	if err := svc.AddItem(ctx, item); err != nil {
		t.Fatalf("AddItem() error: %v", err)
	}
	if err := svc.RemoveItem(ctx, inv.ID, item.ID); err != nil {
		t.Fatalf("RemoveItem() error: %v", err)
	}

	got, items, err := svc.GetInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatalf("GetInvoice() error: %v", err)
	}
	if len(items) != 0 || got.Total != 0 {
		t.Errorf("expected empty invoice, got %d items total %v", len(items), got.Total)
	}
}

func TestIssueInvoice(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()
	inv := draftInvoice(t, svc)

	issued, err := svc.IssueInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatalf("IssueInvoice() error: %v", err)
	}
	if issued.Status != StatusIssued || issued.IssuedAt == nil {
		t.Errorf("expected issued invoice with timestamp, got %+v", issued)
	}

	// Issuing twice is rejected.
	if _, err := svc.IssueInvoice(ctx, inv.ID); !errors.Is(err, ErrNotDraft) {
		t.Fatalf("expected ErrNotDraft, got %v", err)
	}
}

func TestAddItem_RejectedAfterIssue(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()
	inv := draftInvoice(t, svc)

	if _, err := svc.IssueInvoice(ctx, inv.ID); err != nil {
		t.Fatalf("IssueInvoice() error: %v", err)
	}
	err := svc.AddItem(ctx, &InvoiceItem{InvoiceID: inv.ID, Description: "Late charge", UnitPrice: 10})
	if !errors.Is(err, ErrNotDraft) {
		t.Fatalf("expected ErrNotDraft, got %v", err)
	}
}

func TestCreateInvoice_RequiresPatient(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.CreateInvoice(context.Background(), &Invoice{}); err == nil {
		t.Error("expected error for missing patient_id")
	}
}
