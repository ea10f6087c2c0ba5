package forms

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return pool
}

// -- Template repository --

type templateRepoPG struct{ pool *pgxpool.Pool }

func NewTemplateRepoPG(pool *pgxpool.Pool) TemplateRepository {
	return &templateRepoPG{pool: pool}
}

const templateCols = `id, name, description, specialty_id, price, created_at, updated_at`

func (r *templateRepoPG) Create(ctx context.Context, tpl *Template) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO form_template (name, description, specialty_id, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		tpl.Name, tpl.Description, tpl.SpecialtyID, tpl.Price,
	).Scan(&tpl.ID, &tpl.CreatedAt, &tpl.UpdatedAt)
}

func (r *templateRepoPG) GetByID(ctx context.Context, id int64) (*Template, error) {
	return scanTemplate(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+templateCols+` FROM form_template WHERE id = $1`, id))
}

func (r *templateRepoPG) Update(ctx context.Context, tpl *Template) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE form_template SET
			name = $2, description = $3, specialty_id = $4, price = $5, updated_at = NOW()
		WHERE id = $1`,
		tpl.ID, tpl.Name, tpl.Description, tpl.SpecialtyID, tpl.Price,
	)
	return err
}

func (r *templateRepoPG) Delete(ctx context.Context, id int64) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM form_template WHERE id = $1`, id)
	return err
}

func (r *templateRepoPG) List(ctx context.Context, limit, offset int) ([]*Template, int, error) {
	q := conn(ctx, r.pool)

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM form_template`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx,
		`SELECT `+templateCols+` FROM form_template ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tpls, err := collectTemplates(rows)
	if err != nil {
		return nil, 0, err
	}
	return tpls, total, nil
}

func (r *templateRepoPG) ListBySpecialty(ctx context.Context, specialtyID int64, limit, offset int) ([]*Template, int, error) {
	q := conn(ctx, r.pool)

	var total int
	if err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM form_template WHERE specialty_id = $1`, specialtyID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx,
		`SELECT `+templateCols+` FROM form_template WHERE specialty_id = $1 ORDER BY name LIMIT $2 OFFSET $3`,
		specialtyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tpls, err := collectTemplates(rows)
	if err != nil {
		return nil, 0, err
	}
	return tpls, total, nil
}

// Lock takes a transaction-scoped advisory lock keyed by template id so two
// concurrent reconciliations of the same template serialize instead of
// interleaving. Released automatically at commit or rollback.
func (r *templateRepoPG) Lock(ctx context.Context, id int64) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, id)
	return err
}

// LockShared takes the shared form of the same advisory lock, also released
// at commit or rollback.
func (r *templateRepoPG) LockShared(ctx context.Context, id int64) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `SELECT pg_advisory_xact_lock_shared($1)`, id)
	return err
}

func scanTemplate(row pgx.Row) (*Template, error) {
	var t Template
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.SpecialtyID, &t.Price, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTemplates(rows pgx.Rows) ([]*Template, error) {
	var tpls []*Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.SpecialtyID, &t.Price, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tpls = append(tpls, &t)
	}
	return tpls, rows.Err()
}

// -- Section repository --

type sectionRepoPG struct{ pool *pgxpool.Pool }

func NewSectionRepoPG(pool *pgxpool.Pool) SectionRepository {
	return &sectionRepoPG{pool: pool}
}

const sectionCols = `id, template_id, parent_section_id, name, description, sort_order`

func (r *sectionRepoPG) Create(ctx context.Context, sec *Section) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO form_section (template_id, parent_section_id, name, description, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		sec.TemplateID, sec.ParentID, sec.Name, sec.Description, sec.SortOrder,
	).Scan(&sec.ID)
}

func (r *sectionRepoPG) Update(ctx context.Context, sec *Section) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE form_section SET name = $2, description = $3, sort_order = $4
		WHERE id = $1`,
		sec.ID, sec.Name, sec.Description, sec.SortOrder,
	)
	return err
}

func (r *sectionRepoPG) Delete(ctx context.Context, id int64) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM form_section WHERE id = $1`, id)
	return err
}

func (r *sectionRepoPG) ListRoots(ctx context.Context, templateID int64) ([]*Section, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+sectionCols+` FROM form_section
		 WHERE template_id = $1 AND parent_section_id IS NULL
		 ORDER BY sort_order, id`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSections(rows)
}

func (r *sectionRepoPG) ListChildren(ctx context.Context, sectionID int64) ([]*Section, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+sectionCols+` FROM form_section
		 WHERE parent_section_id = $1
		 ORDER BY sort_order, id`, sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSections(rows)
}

func collectSections(rows pgx.Rows) ([]*Section, error) {
	var secs []*Section
	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.ID, &s.TemplateID, &s.ParentID, &s.Name, &s.Description, &s.SortOrder); err != nil {
			return nil, err
		}
		secs = append(secs, &s)
	}
	return secs, rows.Err()
}

// -- Field repository --

type fieldRepoPG struct{ pool *pgxpool.Pool }

func NewFieldRepoPG(pool *pgxpool.Pool) FieldRepository {
	return &fieldRepoPG{pool: pool}
}

const fieldCols = `id, section_id, name, field_type, required, placeholder, sort_order, options, unit`

func (r *fieldRepoPG) Create(ctx context.Context, f *Field) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO form_field (section_id, name, field_type, required, placeholder, sort_order, options, unit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		f.SectionID, f.Name, f.FieldType, f.Required, f.Placeholder, f.SortOrder, f.Options, f.Unit,
	).Scan(&f.ID)
}

func (r *fieldRepoPG) GetByID(ctx context.Context, id int64) (*Field, error) {
	var f Field
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+fieldCols+` FROM form_field WHERE id = $1`, id,
	).Scan(&f.ID, &f.SectionID, &f.Name, &f.FieldType, &f.Required, &f.Placeholder, &f.SortOrder, &f.Options, &f.Unit)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFieldNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fieldRepoPG) Update(ctx context.Context, f *Field) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE form_field SET
			name = $2, field_type = $3, required = $4, placeholder = $5,
			sort_order = $6, options = $7, unit = $8
		WHERE id = $1`,
		f.ID, f.Name, f.FieldType, f.Required, f.Placeholder, f.SortOrder, f.Options, f.Unit,
	)
	return err
}

func (r *fieldRepoPG) Delete(ctx context.Context, id int64) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM form_field WHERE id = $1`, id)
	return err
}

func (r *fieldRepoPG) DeleteBySection(ctx context.Context, sectionID int64) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM form_field WHERE section_id = $1`, sectionID)
	return err
}

func (r *fieldRepoPG) ListBySection(ctx context.Context, sectionID int64) ([]*Field, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+fieldCols+` FROM form_field WHERE section_id = $1 ORDER BY sort_order, id`, sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fields []*Field
	for rows.Next() {
		var f Field
		if err := rows.Scan(&f.ID, &f.SectionID, &f.Name, &f.FieldType, &f.Required, &f.Placeholder, &f.SortOrder, &f.Options, &f.Unit); err != nil {
			return nil, err
		}
		fields = append(fields, &f)
	}
	return fields, rows.Err()
}

// -- Submission repository --

type submissionRepoPG struct{ pool *pgxpool.Pool }

func NewSubmissionRepoPG(pool *pgxpool.Pool) SubmissionRepository {
	return &submissionRepoPG{pool: pool}
}

const submissionCols = `id, patient_id, template_id, clinician_id, visit_id, status, submitted_at`

func (r *submissionRepoPG) Create(ctx context.Context, sub *Submission) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO form_submission (patient_id, template_id, clinician_id, visit_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, submitted_at`,
		sub.PatientID, sub.TemplateID, sub.ClinicianID, sub.VisitID, sub.Status,
	).Scan(&sub.ID, &sub.SubmittedAt)
}

func (r *submissionRepoPG) GetByID(ctx context.Context, id int64) (*Submission, error) {
	var s Submission
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+submissionCols+` FROM form_submission WHERE id = $1`, id,
	).Scan(&s.ID, &s.PatientID, &s.TemplateID, &s.ClinicianID, &s.VisitID, &s.Status, &s.SubmittedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepoPG) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Submission, int, error) {
	return r.list(ctx, `patient_id`, patientID, limit, offset)
}

func (r *submissionRepoPG) ListByVisit(ctx context.Context, visitID int64, limit, offset int) ([]*Submission, int, error) {
	return r.list(ctx, `visit_id`, visitID, limit, offset)
}

func (r *submissionRepoPG) ListByClinician(ctx context.Context, clinicianID int64, limit, offset int) ([]*Submission, int, error) {
	return r.list(ctx, `clinician_id`, clinicianID, limit, offset)
}

func (r *submissionRepoPG) list(ctx context.Context, column string, id int64, limit, offset int) ([]*Submission, int, error) {
	q := conn(ctx, r.pool)

	var total int
	if err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM form_submission WHERE `+column+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx,
		`SELECT `+submissionCols+` FROM form_submission
		 WHERE `+column+` = $1 ORDER BY submitted_at DESC, id DESC LIMIT $2 OFFSET $3`,
		id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var subs []*Submission
	for rows.Next() {
		var s Submission
		if err := rows.Scan(&s.ID, &s.PatientID, &s.TemplateID, &s.ClinicianID, &s.VisitID, &s.Status, &s.SubmittedAt); err != nil {
			return nil, 0, err
		}
		subs = append(subs, &s)
	}
	return subs, total, rows.Err()
}

func (r *submissionRepoPG) CountByTemplate(ctx context.Context, templateID int64) (int, error) {
	var n int
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM form_submission WHERE template_id = $1`, templateID).Scan(&n)
	return n, err
}

// -- Response repository --

type responseRepoPG struct{ pool *pgxpool.Pool }

func NewResponseRepoPG(pool *pgxpool.Pool) ResponseRepository {
	return &responseRepoPG{pool: pool}
}

func (r *responseRepoPG) Create(ctx context.Context, resp *Response) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO form_response (submission_id, field_id, section_id, value)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		resp.SubmissionID, resp.FieldID, resp.SectionID, resp.Value,
	).Scan(&resp.ID)
}

// ListBySubmission joins each response with its field metadata. The join is
// LEFT so answers survive a field that no longer exists; name/type come back
// empty in that case rather than failing the read.
func (r *responseRepoPG) ListBySubmission(ctx context.Context, submissionID int64) ([]*ResponseDetail, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT r.id, r.submission_id, r.field_id, r.section_id, r.value,
		       COALESCE(f.name, ''), COALESCE(f.field_type, ''), f.unit
		FROM form_response r
		LEFT JOIN form_field f ON f.id = r.field_id
		WHERE r.submission_id = $1
		ORDER BY r.section_id, r.id`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []*ResponseDetail
	for rows.Next() {
		var d ResponseDetail
		if err := rows.Scan(&d.ID, &d.SubmissionID, &d.FieldID, &d.SectionID, &d.Value,
			&d.FieldName, &d.FieldType, &d.Unit); err != nil {
			return nil, err
		}
		details = append(details, &d)
	}
	return details, rows.Err()
}
