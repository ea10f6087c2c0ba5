package patient

import "time"

// Patient maps to the patient table.
type Patient struct {
	ID         int64      `db:"id" json:"id"`
	MRN        string     `db:"mrn" json:"mrn"`
	FirstName  string     `db:"first_name" json:"first_name"`
	LastName   string     `db:"last_name" json:"last_name"`
	Gender     *string    `db:"gender" json:"gender,omitempty"`
	BirthDate  *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Phone      *string    `db:"phone" json:"phone,omitempty"`
	Email      *string    `db:"email" json:"email,omitempty"`
	Address    *string    `db:"address" json:"address,omitempty"`
	BloodGroup *string    `db:"blood_group" json:"blood_group,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}
