package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"
)

type mockRepo struct {
	appts  map[int64]*Appointment
	nextID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{appts: make(map[int64]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	m.nextID++
	a.ID = m.nextID
	cp := *a
	m.appts[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.appts[a.ID]; !ok {
		return ErrNotFound
	}
	cp := *a
	m.appts[a.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.appts[id]; !ok {
		return ErrNotFound
	}
	delete(m.appts, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Appointment, int, error) {
	out := make([]*Appointment, 0, len(m.appts))
	for _, a := range m.appts {
		cp := *a
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID int64, limit, offset int) ([]*Appointment, int, error) {
	out := make([]*Appointment, 0)
	for _, a := range m.appts {
		if a.PatientID == patientID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByClinician(_ context.Context, clinicianID int64, limit, offset int) ([]*Appointment, int, error) {
	out := make([]*Appointment, 0)
	for _, a := range m.appts {
		if a.ClinicianID == clinicianID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByDay(_ context.Context, day time.Time, limit, offset int) ([]*Appointment, int, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	out := make([]*Appointment, 0)
	for _, a := range m.appts {
		if !a.ScheduledAt.Before(start) && a.ScheduledAt.Before(end) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func TestCreateAppointment_Defaults(t *testing.T) {
	svc := NewService(newMockRepo())

	a := &Appointment{PatientID: 3, ClinicianID: 1, ScheduledAt: time.Now().Add(time.Hour)}
	if err := svc.CreateAppointment(context.Background(), a); err != nil {
		t.Fatalf("CreateAppointment() error: %v", err)
	}
	if a.Status != StatusBooked {
		t.Errorf("expected default status booked, got %q", a.Status)
	}
	if a.DurationMinutes != 30 {
		t.Errorf("expected default duration 30, got %d", a.DurationMinutes)
	}
}

func TestCreateAppointment_Validation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	if err := svc.CreateAppointment(ctx, &Appointment{ClinicianID: 1, ScheduledAt: time.Now()}); err == nil {
		t.Error("expected error for missing patient_id")
	}
	if err := svc.CreateAppointment(ctx, &Appointment{PatientID: 3, ClinicianID: 1}); err == nil {
		t.Error("expected error for missing scheduled_at")
	}
}

func TestCancelAppointment(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	a := &Appointment{PatientID: 3, ClinicianID: 1, ScheduledAt: time.Now().Add(time.Hour)}
	if err := svc.CreateAppointment(ctx, a); err != nil {
		t.Fatalf("CreateAppointment() error: %v", err)
	}
	if err := svc.CancelAppointment(ctx, a.ID); err != nil {
		t.Fatalf("CancelAppointment() error: %v", err)
	}

	got, err := svc.GetAppointment(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAppointment() error: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Errorf("expected status cancelled, got %q", got.Status)
	}
}

func TestCancelAppointment_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.CancelAppointment(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListAppointmentsByDay(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	for _, at := range []time.Time{
		day.Add(9 * time.Hour),
		day.Add(14 * time.Hour),
		day.AddDate(0, 0, 1).Add(9 * time.Hour),
	} {
		if err := svc.CreateAppointment(ctx, &Appointment{PatientID: 3, ClinicianID: 1, ScheduledAt: at}); err != nil {
			t.Fatalf("CreateAppointment() error: %v", err)
		}
	}

	_, total, err := svc.ListAppointmentsByDay(ctx, day, 20, 0)
	if err != nil {
		t.Fatalf("ListAppointmentsByDay() error: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 appointments on the day, got %d", total)
	}
}
