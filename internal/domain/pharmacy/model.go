package pharmacy

import "time"

// Prescription maps to the prescription table. Dosage fields are free text,
// as written by the prescriber.
type Prescription struct {
	ID             int64     `db:"id" json:"id"`
	PatientID      int64     `db:"patient_id" json:"patient_id"`
	VisitID        int64     `db:"visit_id" json:"visit_id"`
	ClinicianID    int64     `db:"clinician_id" json:"clinician_id"`
	MedicationName string    `db:"medication_name" json:"medication_name"`
	Dosage         string    `db:"dosage" json:"dosage"`
	Frequency      string    `db:"frequency" json:"frequency"`
	DurationDays   *int      `db:"duration_days" json:"duration_days,omitempty"`
	Instructions   *string   `db:"instructions" json:"instructions,omitempty"`
	PrescribedAt   time.Time `db:"prescribed_at" json:"prescribed_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
