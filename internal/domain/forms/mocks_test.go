package forms

import (
	"context"
	"errors"
	"sort"
	"time"
)

// -- Mock repositories --

type mockTemplateRepo struct {
	templates   map[int64]*Template
	nextID      int64
	locks       []int64
	sharedLocks []int64
}

func newMockTemplateRepo() *mockTemplateRepo {
	return &mockTemplateRepo{templates: make(map[int64]*Template)}
}

func (m *mockTemplateRepo) Create(_ context.Context, tpl *Template) error {
	m.nextID++
	tpl.ID = m.nextID
	tpl.CreatedAt = time.Now()
	tpl.UpdatedAt = time.Now()
	cp := *tpl
	m.templates[tpl.ID] = &cp
	return nil
}

func (m *mockTemplateRepo) GetByID(_ context.Context, id int64) (*Template, error) {
	tpl, ok := m.templates[id]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	cp := *tpl
	return &cp, nil
}

func (m *mockTemplateRepo) Update(_ context.Context, tpl *Template) error {
	if _, ok := m.templates[tpl.ID]; !ok {
		return ErrTemplateNotFound
	}
	cp := *tpl
	m.templates[tpl.ID] = &cp
	return nil
}

func (m *mockTemplateRepo) Delete(_ context.Context, id int64) error {
	delete(m.templates, id)
	return nil
}

func (m *mockTemplateRepo) List(_ context.Context, limit, offset int) ([]*Template, int, error) {
	var result []*Template
	for _, tpl := range m.templates {
		result = append(result, tpl)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return page(result, limit, offset), len(result), nil
}

func (m *mockTemplateRepo) ListBySpecialty(_ context.Context, specialtyID int64, limit, offset int) ([]*Template, int, error) {
	var result []*Template
	for _, tpl := range m.templates {
		if tpl.SpecialtyID == specialtyID {
			result = append(result, tpl)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return page(result, limit, offset), len(result), nil
}

func (m *mockTemplateRepo) Lock(_ context.Context, id int64) error {
	m.locks = append(m.locks, id)
	return nil
}

func (m *mockTemplateRepo) LockShared(_ context.Context, id int64) error {
	m.sharedLocks = append(m.sharedLocks, id)
	return nil
}

type mockSectionRepo struct {
	sections map[int64]*Section
	nextID   int64
	creates  int
	updates  int
	deletes  int
}

func newMockSectionRepo() *mockSectionRepo {
	return &mockSectionRepo{sections: make(map[int64]*Section)}
}

func (m *mockSectionRepo) Create(_ context.Context, sec *Section) error {
	m.nextID++
	sec.ID = m.nextID
	m.creates++
	m.sections[sec.ID] = &Section{
		ID:          sec.ID,
		TemplateID:  sec.TemplateID,
		ParentID:    sec.ParentID,
		Name:        sec.Name,
		Description: sec.Description,
		SortOrder:   sec.SortOrder,
	}
	return nil
}

func (m *mockSectionRepo) Update(_ context.Context, sec *Section) error {
	stored, ok := m.sections[sec.ID]
	if !ok {
		return errors.New("section not found")
	}
	m.updates++
	stored.Name = sec.Name
	stored.Description = sec.Description
	stored.SortOrder = sec.SortOrder
	return nil
}

func (m *mockSectionRepo) Delete(_ context.Context, id int64) error {
	delete(m.sections, id)
	m.deletes++
	return nil
}

func (m *mockSectionRepo) ListRoots(_ context.Context, templateID int64) ([]*Section, error) {
	var result []*Section
	for _, sec := range m.sections {
		if sec.TemplateID == templateID && sec.ParentID == nil {
			result = append(result, copySection(sec))
		}
	}
	sortSections(result)
	return result, nil
}

func (m *mockSectionRepo) ListChildren(_ context.Context, sectionID int64) ([]*Section, error) {
	var result []*Section
	for _, sec := range m.sections {
		if sec.ParentID != nil && *sec.ParentID == sectionID {
			result = append(result, copySection(sec))
		}
	}
	sortSections(result)
	return result, nil
}

func copySection(sec *Section) *Section {
	cp := *sec
	cp.Fields = nil
	cp.Children = nil
	return &cp
}

func sortSections(secs []*Section) {
	sort.Slice(secs, func(i, j int) bool {
		if secs[i].SortOrder != secs[j].SortOrder {
			return secs[i].SortOrder < secs[j].SortOrder
		}
		return secs[i].ID < secs[j].ID
	})
}

type mockFieldRepo struct {
	fields  map[int64]*Field
	nextID  int64
	creates int
	updates int
	deletes int
}

func newMockFieldRepo() *mockFieldRepo {
	return &mockFieldRepo{fields: make(map[int64]*Field)}
}

func (m *mockFieldRepo) Create(_ context.Context, f *Field) error {
	m.nextID++
	f.ID = m.nextID
	m.creates++
	cp := *f
	m.fields[f.ID] = &cp
	return nil
}

func (m *mockFieldRepo) GetByID(_ context.Context, id int64) (*Field, error) {
	f, ok := m.fields[id]
	if !ok {
		return nil, ErrFieldNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *mockFieldRepo) Update(_ context.Context, f *Field) error {
	if _, ok := m.fields[f.ID]; !ok {
		return ErrFieldNotFound
	}
	m.updates++
	cp := *f
	m.fields[f.ID] = &cp
	return nil
}

func (m *mockFieldRepo) Delete(_ context.Context, id int64) error {
	delete(m.fields, id)
	m.deletes++
	return nil
}

func (m *mockFieldRepo) DeleteBySection(_ context.Context, sectionID int64) error {
	for id, f := range m.fields {
		if f.SectionID == sectionID {
			delete(m.fields, id)
			m.deletes++
		}
	}
	return nil
}

func (m *mockFieldRepo) ListBySection(_ context.Context, sectionID int64) ([]*Field, error) {
	var result []*Field
	for _, f := range m.fields {
		if f.SectionID == sectionID {
			cp := *f
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SortOrder != result[j].SortOrder {
			return result[i].SortOrder < result[j].SortOrder
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

type mockSubmissionRepo struct {
	submissions map[int64]*Submission
	nextID      int64
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{submissions: make(map[int64]*Submission)}
}

func (m *mockSubmissionRepo) Create(_ context.Context, sub *Submission) error {
	m.nextID++
	sub.ID = m.nextID
	sub.SubmittedAt = time.Now()
	cp := *sub
	m.submissions[sub.ID] = &cp
	return nil
}

func (m *mockSubmissionRepo) GetByID(_ context.Context, id int64) (*Submission, error) {
	sub, ok := m.submissions[id]
	if !ok {
		return nil, ErrSubmissionNotFound
	}
	cp := *sub
	return &cp, nil
}

func (m *mockSubmissionRepo) ListByPatient(_ context.Context, patientID int64, limit, offset int) ([]*Submission, int, error) {
	return m.listBy(func(s *Submission) bool { return s.PatientID == patientID }, limit, offset)
}

func (m *mockSubmissionRepo) ListByVisit(_ context.Context, visitID int64, limit, offset int) ([]*Submission, int, error) {
	return m.listBy(func(s *Submission) bool { return s.VisitID == visitID }, limit, offset)
}

func (m *mockSubmissionRepo) ListByClinician(_ context.Context, clinicianID int64, limit, offset int) ([]*Submission, int, error) {
	return m.listBy(func(s *Submission) bool { return s.ClinicianID == clinicianID }, limit, offset)
}

func (m *mockSubmissionRepo) listBy(match func(*Submission) bool, limit, offset int) ([]*Submission, int, error) {
	var result []*Submission
	for _, sub := range m.submissions {
		if match(sub) {
			result = append(result, sub)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return page(result, limit, offset), len(result), nil
}

func (m *mockSubmissionRepo) CountByTemplate(_ context.Context, templateID int64) (int, error) {
	n := 0
	for _, sub := range m.submissions {
		if sub.TemplateID == templateID {
			n++
		}
	}
	return n, nil
}

type mockResponseRepo struct {
	responses map[int64]*Response
	nextID    int64
	fields    *mockFieldRepo
}

func newMockResponseRepo(fields *mockFieldRepo) *mockResponseRepo {
	return &mockResponseRepo{responses: make(map[int64]*Response), fields: fields}
}

func (m *mockResponseRepo) Create(_ context.Context, resp *Response) error {
	m.nextID++
	resp.ID = m.nextID
	cp := *resp
	m.responses[resp.ID] = &cp
	return nil
}

func (m *mockResponseRepo) ListBySubmission(_ context.Context, submissionID int64) ([]*ResponseDetail, error) {
	var result []*ResponseDetail
	for _, resp := range m.responses {
		if resp.SubmissionID != submissionID {
			continue
		}
		d := &ResponseDetail{Response: *resp}
		if f, ok := m.fields.fields[resp.FieldID]; ok {
			d.FieldName = f.Name
			d.FieldType = f.FieldType
			d.Unit = f.Unit
		}
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// -- Mock directories --

type mockVisitDirectory struct {
	visits map[int64]*VisitInfo
}

func newMockVisitDirectory() *mockVisitDirectory {
	return &mockVisitDirectory{visits: make(map[int64]*VisitInfo)}
}

func (m *mockVisitDirectory) VisitInfo(_ context.Context, visitID int64) (*VisitInfo, error) {
	v, ok := m.visits[visitID]
	if !ok {
		return nil, ErrVisitNotFound
	}
	return v, nil
}

type mockClinicianDirectory struct {
	clinicians map[int64]*ClinicianInfo
}

func newMockClinicianDirectory() *mockClinicianDirectory {
	return &mockClinicianDirectory{clinicians: make(map[int64]*ClinicianInfo)}
}

func (m *mockClinicianDirectory) ClinicianInfo(_ context.Context, clinicianID int64) (*ClinicianInfo, error) {
	c, ok := m.clinicians[clinicianID]
	if !ok {
		return nil, ErrClinicianNotFound
	}
	return c, nil
}
