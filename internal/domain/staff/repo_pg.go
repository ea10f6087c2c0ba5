package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func conn(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return pool
}

// -- Specialties --

type specialtyRepoPG struct {
	pool *pgxpool.Pool
}

func NewSpecialtyRepo(pool *pgxpool.Pool) SpecialtyRepository {
	return &specialtyRepoPG{pool: pool}
}

func (r *specialtyRepoPG) Create(ctx context.Context, sp *Specialty) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO specialty (name, description) VALUES ($1, $2)
		RETURNING id`,
		sp.Name, sp.Description,
	).Scan(&sp.ID)
}

func (r *specialtyRepoPG) GetByID(ctx context.Context, id int64) (*Specialty, error) {
	var sp Specialty
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name, description FROM specialty WHERE id = $1`, id,
	).Scan(&sp.ID, &sp.Name, &sp.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("specialty %d: %w", id, ErrSpecialtyNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func (r *specialtyRepoPG) Update(ctx context.Context, sp *Specialty) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE specialty SET name=$2, description=$3 WHERE id = $1`,
		sp.ID, sp.Name, sp.Description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("specialty %d: %w", sp.ID, ErrSpecialtyNotFound)
	}
	return nil
}

func (r *specialtyRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM specialty WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("specialty %d: %w", id, ErrSpecialtyNotFound)
	}
	return nil
}

func (r *specialtyRepoPG) List(ctx context.Context) ([]*Specialty, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT id, name, description FROM specialty ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*Specialty, 0)
	for rows.Next() {
		var sp Specialty
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.Description); err != nil {
			return nil, err
		}
		out = append(out, &sp)
	}
	return out, rows.Err()
}

// -- Clinicians --

type clinicianRepoPG struct {
	pool *pgxpool.Pool
}

func NewClinicianRepo(pool *pgxpool.Pool) ClinicianRepository {
	return &clinicianRepoPG{pool: pool}
}

const clinicianCols = `id, first_name, last_name, specialty_id, license_number,
	phone, email, user_id, active, created_at, updated_at`

func (r *clinicianRepoPG) Create(ctx context.Context, cl *Clinician) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO clinician (first_name, last_name, specialty_id, license_number,
			phone, email, user_id, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at`,
		cl.FirstName, cl.LastName, cl.SpecialtyID, cl.LicenseNumber,
		cl.Phone, cl.Email, cl.UserID, cl.Active,
	).Scan(&cl.ID, &cl.CreatedAt, &cl.UpdatedAt)
}

func (r *clinicianRepoPG) GetByID(ctx context.Context, id int64) (*Clinician, error) {
	cl, err := scanClinician(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+clinicianCols+` FROM clinician WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("clinician %d: %w", id, err)
	}
	return cl, nil
}

func (r *clinicianRepoPG) GetByUserID(ctx context.Context, userID string) (*Clinician, error) {
	cl, err := scanClinician(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+clinicianCols+` FROM clinician WHERE user_id = $1`, userID))
	if err != nil {
		return nil, fmt.Errorf("clinician user %s: %w", userID, err)
	}
	return cl, nil
}

func (r *clinicianRepoPG) Update(ctx context.Context, cl *Clinician) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE clinician SET
			first_name=$2, last_name=$3, specialty_id=$4, license_number=$5,
			phone=$6, email=$7, user_id=$8, active=$9, updated_at=NOW()
		WHERE id = $1`,
		cl.ID, cl.FirstName, cl.LastName, cl.SpecialtyID, cl.LicenseNumber,
		cl.Phone, cl.Email, cl.UserID, cl.Active,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("clinician %d: %w", cl.ID, ErrClinicianNotFound)
	}
	return nil
}

func (r *clinicianRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM clinician WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("clinician %d: %w", id, ErrClinicianNotFound)
	}
	return nil
}

func (r *clinicianRepoPG) List(ctx context.Context, limit, offset int) ([]*Clinician, int, error) {
	return r.list(ctx, ``, nil, limit, offset)
}

func (r *clinicianRepoPG) ListBySpecialty(ctx context.Context, specialtyID int64, limit, offset int) ([]*Clinician, int, error) {
	return r.list(ctx, `WHERE specialty_id = $1`, []interface{}{specialtyID}, limit, offset)
}

func (r *clinicianRepoPG) list(ctx context.Context, where string, args []interface{}, limit, offset int) ([]*Clinician, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM clinician `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM clinician %s ORDER BY last_name, first_name, id LIMIT $%d OFFSET $%d`,
		clinicianCols, where, n+1, n+2)
	rows, err := conn(ctx, r.pool).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*Clinician, 0)
	for rows.Next() {
		cl, err := scanClinician(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, cl)
	}
	return out, total, rows.Err()
}

func scanClinician(row pgx.Row) (*Clinician, error) {
	var cl Clinician
	err := row.Scan(&cl.ID, &cl.FirstName, &cl.LastName, &cl.SpecialtyID, &cl.LicenseNumber,
		&cl.Phone, &cl.Email, &cl.UserID, &cl.Active, &cl.CreatedAt, &cl.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrClinicianNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cl, nil
}
