package service

import (
	"context"
	"errors"
	"sort"
	"time"

	cdomain "github.com/haythamforever/HonorHub/internal/catalog/domain"
	domain "github.com/haythamforever/HonorHub/internal/certificates/domain"
	edomain "github.com/haythamforever/HonorHub/internal/email/domain"
	evdomain "github.com/haythamforever/HonorHub/internal/events/domain"
	"github.com/haythamforever/HonorHub/internal/render"
	sdomain "github.com/haythamforever/HonorHub/internal/settings/domain"
)

type memRepo struct {
	rows      map[int64]domain.Certificate
	nextID    int64
	createErr error
	marked    []int64
	tiers     []domain.TierCount
	catalog   *fakeCatalog
	senders   map[int64]string
}

func newMemRepo(cat *fakeCatalog) *memRepo {
	return &memRepo{rows: map[int64]domain.Certificate{}, catalog: cat, senders: map[int64]string{}}
}

func (m *memRepo) Create(_ context.Context, n domain.NewCertificate) (domain.Certificate, error) {
	if m.createErr != nil {
		return domain.Certificate{}, m.createErr
	}
	m.nextID++
	c := domain.Certificate{
		ID: m.nextID, CertificateID: n.CertificateID, EmployeeID: n.EmployeeID, TierID: n.TierID,
		TemplateID: n.TemplateID, SenderID: n.SenderID, CustomMessage: n.CustomMessage,
		AchievementDescription: n.AchievementDescription, Period: n.Period, PDFPath: n.PDFPath,
		CreatedAt: time.Date(2025, 8, 1, 0, 0, 0, int(m.nextID), time.UTC),
	}
	m.rows[c.ID] = c
	return c, nil
}

func (m *memRepo) GetDetail(_ context.Context, id int64) (domain.Detail, error) {
	c, ok := m.rows[id]
	if !ok {
		return domain.Detail{}, domain.ErrCertificateNotFound
	}
	e := m.catalog.employees[c.EmployeeID]
	t := m.catalog.tiers[c.TierID]
	return domain.Detail{Certificate: c, EmployeeName: e.Name, EmployeeEmail: e.Email, TierName: t.Name, SenderName: m.senders[c.SenderID]}, nil
}

func (m *memRepo) MarkSent(_ context.Context, id int64, at time.Time) error {
	c, ok := m.rows[id]
	if !ok {
		return domain.ErrCertificateNotFound
	}
	c.EmailSent, c.SentAt = true, &at
	m.rows[id] = c
	m.marked = append(m.marked, id)
	return nil
}

func (m *memRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return domain.ErrCertificateNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memRepo) Count(context.Context) (int, error) { return len(m.rows), nil }

func (m *memRepo) CountByTier(context.Context) ([]domain.TierCount, error) { return m.tiers, nil }

func (m *memRepo) Recent(ctx context.Context, limit int) ([]domain.Detail, error) {
	return m.List(ctx, domain.ListFilter{Limit: limit})
}

func (m *memRepo) List(ctx context.Context, f domain.ListFilter) ([]domain.Detail, error) {
	ids := make([]int64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	var out []domain.Detail
	for _, id := range ids {
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
		d, _ := m.GetDetail(ctx, id)
		out = append(out, d)
	}
	return out, nil
}

type fakeCatalog struct {
	employees map[int64]cdomain.Employee
	tiers     map[int64]cdomain.Tier
	templates map[int64]cdomain.Template
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		employees: map[int64]cdomain.Employee{
			1: {ID: 1, Name: "Jane Doe", Email: "jane@acme.test"},
			2: {ID: 2, Name: "John Roe", Email: "john@acme.test"},
			3: {ID: 3, Name: "Ana Poe", Email: "ana@acme.test"},
		},
		tiers:     map[int64]cdomain.Tier{1: {ID: 1, Name: "Gold", Color: "#FFD700"}},
		templates: map[int64]cdomain.Template{1: {ID: 1, Name: "Classic", IsDefault: true}},
	}
}

func (f *fakeCatalog) GetEmployee(_ context.Context, id int64) (cdomain.Employee, error) {
	e, ok := f.employees[id]
	if !ok {
		return e, cdomain.ErrNotFound
	}
	return e, nil
}

func (f *fakeCatalog) GetTier(_ context.Context, id int64) (cdomain.Tier, error) {
	t, ok := f.tiers[id]
	if !ok {
		return t, cdomain.ErrNotFound
	}
	return t, nil
}

func (f *fakeCatalog) GetTemplate(_ context.Context, id int64) (cdomain.Template, error) {
	t, ok := f.templates[id]
	if !ok {
		return t, cdomain.ErrNotFound
	}
	return t, nil
}

func (f *fakeCatalog) CountEmployees(context.Context) (int, error) { return len(f.employees), nil }

type staticBranding struct{ b sdomain.Branding }

func (s staticBranding) LoadBranding(context.Context) (sdomain.Branding, error) { return s.b, nil }

type fakeRenderer struct {
	failFor map[int64]bool
	inputs  []render.Input
}

func (f *fakeRenderer) Render(_ context.Context, in render.Input) (string, error) {
	if f.failFor[in.Employee.ID] {
		return "", errors.New("disk full")
	}
	f.inputs = append(f.inputs, in)
	return "/uploads/certificates/" + in.CertificateID.String() + ".pdf", nil
}

type fakeMailer struct {
	err   error
	sent  []edomain.CertificateEmail
	block bool
}

func (f *fakeMailer) SendCertificate(ctx context.Context, ce edomain.CertificateEmail) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	f.sent = append(f.sent, ce)
	return f.err
}

func (f *fakeMailer) SendTest(context.Context, string) error { return nil }

type capturePub struct{ types []string }

func (c *capturePub) Publish(_ context.Context, e evdomain.Event) error {
	c.types = append(c.types, e.Type)
	return nil
}
