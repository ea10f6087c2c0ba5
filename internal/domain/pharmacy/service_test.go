package pharmacy

import (
	"context"
	"errors"
	"testing"
)

type mockRepo struct {
	rxs    map[int64]*Prescription
	nextID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{rxs: make(map[int64]*Prescription)}
}

func (m *mockRepo) Create(_ context.Context, p *Prescription) error {
	m.nextID++
	p.ID = m.nextID
	cp := *p
	m.rxs[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Prescription, error) {
	p, ok := m.rxs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, p *Prescription) error {
	if _, ok := m.rxs[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	m.rxs[p.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.rxs[id]; !ok {
		return ErrNotFound
	}
	delete(m.rxs, id)
	return nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID int64, limit, offset int) ([]*Prescription, int, error) {
	out := make([]*Prescription, 0)
	for _, p := range m.rxs {
		if p.PatientID == patientID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByVisit(_ context.Context, visitID int64, limit, offset int) ([]*Prescription, int, error) {
	out := make([]*Prescription, 0)
	for _, p := range m.rxs {
		if p.VisitID == visitID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func TestCreatePrescription(t *testing.T) {
	svc := NewService(newMockRepo())

	p := &Prescription{
		PatientID: 3, VisitID: 4, ClinicianID: 1,
		MedicationName: "Amoxicillin", Dosage: "500mg", Frequency: "3x daily",
	}
	if err := svc.CreatePrescription(context.Background(), p); err != nil {
		t.Fatalf("CreatePrescription() error: %v", err)
	}
	if p.ID == 0 {
		t.Error("expected assigned id")
	}
	if p.PrescribedAt.IsZero() {
		t.Error("expected prescribed_at to be stamped")
	}
}

func TestCreatePrescription_Validation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	cases := []*Prescription{
		{VisitID: 4, ClinicianID: 1, MedicationName: "X", Dosage: "1"},
		{PatientID: 3, ClinicianID: 1, MedicationName: "X", Dosage: "1"},
		{PatientID: 3, VisitID: 4, ClinicianID: 1, Dosage: "1"},
		{PatientID: 3, VisitID: 4, ClinicianID: 1, MedicationName: "X"},
	}
	for i, p := range cases {
		if err := svc.CreatePrescription(ctx, p); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestListPrescriptionsByVisit(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()
	for _, visitID := range []int64{4, 4, 9} {
		if err := svc.CreatePrescription(ctx, &Prescription{
			PatientID: 3, VisitID: visitID, ClinicianID: 1,
			MedicationName: "Amoxicillin", Dosage: "500mg", Frequency: "3x daily",
		}); err != nil {
			t.Fatalf("CreatePrescription() error: %v", err)
		}
	}

	_, total, err := svc.ListPrescriptionsByVisit(ctx, 4, 20, 0)
	if err != nil {
		t.Fatalf("ListPrescriptionsByVisit() error: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 prescriptions, got %d", total)
	}
}

func TestDeletePrescription_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.DeletePrescription(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
