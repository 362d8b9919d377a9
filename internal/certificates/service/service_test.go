package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cdomain "github.com/haythamforever/HonorHub/internal/catalog/domain"
	domain "github.com/haythamforever/HonorHub/internal/certificates/domain"
	edomain "github.com/haythamforever/HonorHub/internal/email/domain"
	evdomain "github.com/haythamforever/HonorHub/internal/events/domain"
	"github.com/haythamforever/HonorHub/internal/logger"
	"github.com/haythamforever/HonorHub/internal/render"
	sdomain "github.com/haythamforever/HonorHub/internal/settings/domain"
)

type fixture struct {
	svc      *Service
	repo     *memRepo
	catalog  *fakeCatalog
	renderer *fakeRenderer
	mailer   *fakeMailer
	pub      *capturePub
}

var (
	admin   = cdomain.Sender{ID: 1, Name: "Ada Admin", Role: cdomain.RoleAdmin}
	manager = cdomain.Sender{ID: 2, Name: "Max Manager", Role: cdomain.RoleManager, SignatureName: "Max M."}
	other   = cdomain.Sender{ID: 3, Name: "Olga Other", Role: cdomain.RoleManager}
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat := newFakeCatalog()
	f := &fixture{
		repo:     newMemRepo(cat),
		catalog:  cat,
		renderer: &fakeRenderer{failFor: map[int64]bool{}},
		mailer:   &fakeMailer{},
		pub:      &capturePub{},
	}
	f.repo.senders[manager.ID] = manager.Name
	branding := staticBranding{b: sdomain.Branding{CompanyName: "Acme", LogoPath: "/uploads/logos/acme.png", SignatureName: "Global Name", SignatureTitle: "CEO"}}
	f.svc = New(f.repo, cat, branding, f.renderer, f.mailer, Options{
		EmailTimeout: time.Second,
		RecentLimit:  2,
		ResolvePath:  func(p string) string { return "/srv" + p },
	}, logger.Nop()).WithPublisher(f.pub)
	return f
}

func spec(employee int64) domain.IssueSpec {
	return domain.IssueSpec{EmployeeID: employee, TierID: 1, TemplateID: 1}
}

func TestCreate_RendersPersistsAndSends(t *testing.T) {
	f := newFixture(t)
	in := domain.CreateInput{IssueSpec: spec(1), SendEmail: true, Sender: manager}
	in.CustomMessage = "Great work"
	in.Period = "Q3 2025"

	got, err := f.svc.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", got.EmployeeName)
	assert.True(t, got.EmailSent)
	assert.NotNil(t, got.SentAt)
	assert.Empty(t, got.EmailError)
	assert.Equal(t, "/uploads/certificates/"+got.CertificateID.String()+".pdf", got.PDFPath)

	require.Len(t, f.renderer.inputs, 1)
	ri := f.renderer.inputs[0]
	assert.Equal(t, got.CertificateID, ri.CertificateID)
	assert.Equal(t, "/srv/uploads/logos/acme.png", ri.LogoPath)
	assert.Equal(t, render.Signature{Name: "Max M.", Title: "CEO"}, render.ResolveSignature(ri.Override, ri.Sender, ri.Global))

	require.Len(t, f.mailer.sent, 1)
	sent := f.mailer.sent[0]
	assert.Equal(t, "jane@acme.test", sent.EmployeeEmail)
	assert.Equal(t, "Gold", sent.TierName)
	assert.Equal(t, "Max Manager", sent.SenderName)
	assert.Equal(t, "Great work", sent.CustomMessage)
	assert.Equal(t, "/srv"+got.PDFPath, sent.PDFPath)

	assert.Equal(t, []string{evdomain.TypeCertificateIssued, evdomain.TypeCertificateEmailSent}, f.pub.types)
}

func TestCreate_MissingReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.CreateInput{IssueSpec: domain.IssueSpec{EmployeeID: 99, TierID: 1, TemplateID: 1}, Sender: admin})
	assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)
	assert.ErrorIs(t, err, domain.ErrReferenceNotFound)
	assert.NotErrorIs(t, err, domain.ErrTierNotFound)
	assert.Contains(t, err.Error(), "99")

	_, err = f.svc.Create(ctx, domain.CreateInput{IssueSpec: domain.IssueSpec{EmployeeID: 1, TierID: 7, TemplateID: 1}, Sender: admin})
	assert.ErrorIs(t, err, domain.ErrTierNotFound)

	_, err = f.svc.Create(ctx, domain.CreateInput{IssueSpec: domain.IssueSpec{EmployeeID: 1, TierID: 1, TemplateID: 7}, Sender: admin})
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)

	assert.Empty(t, f.renderer.inputs, "render must not run for invalid references")
	assert.Empty(t, f.repo.rows)
}

func TestCreate_RenderFailureWritesNoRow(t *testing.T) {
	f := newFixture(t)
	f.renderer.failFor[1] = true

	_, err := f.svc.Create(context.Background(), domain.CreateInput{IssueSpec: spec(1), SendEmail: true, Sender: admin})
	assert.ErrorIs(t, err, domain.ErrRenderFailed)
	assert.Empty(t, f.repo.rows)
	assert.Empty(t, f.mailer.sent)
}

func TestCreate_PersistFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.createErr = errors.New("connection reset")

	_, err := f.svc.Create(context.Background(), domain.CreateInput{IssueSpec: spec(1), SendEmail: true, Sender: admin})
	assert.ErrorIs(t, err, domain.ErrPersistFailed)
	assert.Empty(t, f.mailer.sent)
}

func TestCreate_EmailFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("535 authentication failed")

	got, err := f.svc.Create(context.Background(), domain.CreateInput{IssueSpec: spec(1), SendEmail: true, Sender: admin})
	require.NoError(t, err)
	assert.False(t, got.EmailSent)
	assert.Nil(t, got.SentAt)
	assert.Contains(t, got.EmailError, "authentication failed")

	row := f.repo.rows[got.ID]
	assert.False(t, row.EmailSent)
	assert.Empty(t, f.repo.marked)
	assert.Contains(t, f.pub.types, evdomain.TypeCertificateEmailFailed)
}

func TestCreate_NoEmailRequested(t *testing.T) {
	f := newFixture(t)
	got, err := f.svc.Create(context.Background(), domain.CreateInput{IssueSpec: spec(1), Sender: admin})
	require.NoError(t, err)
	assert.False(t, got.EmailSent)
	assert.Empty(t, f.mailer.sent)
}

func TestCreate_DispatchTimeout(t *testing.T) {
	f := newFixture(t)
	f.svc.opts.EmailTimeout = 10 * time.Millisecond
	f.mailer.block = true

	got, err := f.svc.Create(context.Background(), domain.CreateInput{IssueSpec: spec(1), SendEmail: true, Sender: admin})
	require.NoError(t, err)
	assert.False(t, got.EmailSent)
	assert.Contains(t, got.EmailError, context.DeadlineExceeded.Error())
}

func TestCreateBulk_PartialFailure(t *testing.T) {
	f := newFixture(t)
	f.renderer.failFor[3] = true

	specs := []domain.IssueSpec{spec(1), spec(99), spec(2), spec(3)}
	res := f.svc.CreateBulk(context.Background(), domain.BulkInput{Specs: specs, SendEmail: true, Sender: manager})

	assert.Equal(t, 2, res.Success)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, len(specs), res.Success+res.Failed)

	require.Len(t, res.Certificates, 2)
	assert.Equal(t, "Jane Doe", res.Certificates[0].EmployeeName)
	assert.Equal(t, "John Roe", res.Certificates[1].EmployeeName)
	assert.True(t, res.Certificates[0].EmailSent)

	require.Len(t, res.Errors, 2)
	assert.Equal(t, 1, res.Errors[0].Index)
	assert.Equal(t, domain.StageValidation, res.Errors[0].Stage)
	assert.Equal(t, int64(99), res.Errors[0].Spec.EmployeeID)
	assert.Equal(t, 3, res.Errors[1].Index)
	assert.Equal(t, domain.StageRender, res.Errors[1].Stage)

	assert.Len(t, f.repo.rows, 2)
	assert.Len(t, f.mailer.sent, 2)
}

func TestCreateBulk_OneUnknownTier(t *testing.T) {
	f := newFixture(t)
	bad := spec(2)
	bad.TierID = 42

	specs := []domain.IssueSpec{spec(1), bad, spec(3), spec(2)}
	res := f.svc.CreateBulk(context.Background(), domain.BulkInput{Specs: specs, Sender: admin})

	assert.Equal(t, len(specs)-1, res.Success)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 1, res.Errors[0].Index)
	assert.Equal(t, domain.StageValidation, res.Errors[0].Stage)
	assert.Equal(t, "tier 42 not found", res.Errors[0].Error)
	assert.Equal(t, int64(42), res.Errors[0].Spec.TierID)

	assert.Len(t, f.repo.rows, len(specs)-1)
	for _, c := range f.repo.rows {
		assert.Equal(t, int64(1), c.TierID)
	}
	assert.Len(t, f.renderer.inputs, len(specs)-1)
}

func TestCreateBulk_EmailFailureStillCountsAsSuccess(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("provider down")

	res := f.svc.CreateBulk(context.Background(), domain.BulkInput{Specs: []domain.IssueSpec{spec(1), spec(2)}, SendEmail: true, Sender: admin})
	assert.Equal(t, 2, res.Success)
	assert.Zero(t, res.Failed)
	for _, c := range res.Certificates {
		assert.False(t, c.EmailSent)
	}
}

func TestCreateBulk_Empty(t *testing.T) {
	f := newFixture(t)
	res := f.svc.CreateBulk(context.Background(), domain.BulkInput{Sender: admin})
	assert.Zero(t, res.Success+res.Failed)
	assert.NotNil(t, res.Certificates)
	assert.NotNil(t, res.Errors)
}

func TestResend(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Create(context.Background(), domain.CreateInput{IssueSpec: spec(1), Sender: manager})
	require.NoError(t, err)

	got, err := f.svc.Resend(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, got.EmailSent)
	assert.Len(t, f.repo.rows, 1, "resend must not create a new record")
	assert.Len(t, f.renderer.inputs, 1, "resend must not re-render")
	assert.Equal(t, []int64{created.ID}, f.repo.marked)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "Max Manager", f.mailer.sent[0].SenderName)
}

func TestResend_FailureIsReported(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Create(context.Background(), domain.CreateInput{IssueSpec: spec(1), Sender: admin})
	require.NoError(t, err)

	f.mailer.err = edomain.ErrRateLimited
	_, err = f.svc.Resend(context.Background(), created.ID)
	assert.ErrorIs(t, err, domain.ErrDispatchFailed)
	assert.ErrorIs(t, err, edomain.ErrRateLimited)
	assert.False(t, f.repo.rows[created.ID].EmailSent)

	_, err = f.svc.Resend(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrCertificateNotFound)
}

func TestDelete_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1, _ := f.svc.Create(ctx, domain.CreateInput{IssueSpec: spec(1), Sender: manager})
	c2, _ := f.svc.Create(ctx, domain.CreateInput{IssueSpec: spec(2), Sender: manager})

	assert.ErrorIs(t, f.svc.Delete(ctx, c1.ID, other), domain.ErrNotAuthorized)
	assert.Contains(t, f.repo.rows, c1.ID)

	require.NoError(t, f.svc.Delete(ctx, c1.ID, manager))
	require.NoError(t, f.svc.Delete(ctx, c2.ID, admin))
	assert.Empty(t, f.repo.rows)
	assert.ErrorIs(t, f.svc.Delete(ctx, c2.ID, admin), domain.ErrCertificateNotFound)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, e := range []int64{1, 2, 3} {
		_, err := f.svc.Create(ctx, domain.CreateInput{IssueSpec: spec(e), Sender: manager})
		require.NoError(t, err)
	}
	f.repo.tiers = []domain.TierCount{{TierID: 1, TierName: "Gold", Count: 3}, {TierID: 2, TierName: "Silver", Count: 0}}

	st, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalCertificates)
	assert.Equal(t, 3, st.TotalEmployees)
	assert.Len(t, st.ByTier, 2)
	assert.Zero(t, st.ByTier[1].Count)
	require.Len(t, st.Recent, 2)
	assert.Equal(t, "Ana Poe", st.Recent[0].EmployeeName)
}

func TestCreateBulk_FieldLimitsAreValidationFailures(t *testing.T) {
	f := newFixture(t)

	long := spec(2)
	long.Period = strings.Repeat("Q", 101)
	zero := spec(1)
	zero.TierID = 0

	res := f.svc.CreateBulk(context.Background(), domain.BulkInput{Specs: []domain.IssueSpec{spec(1), long, zero}, Sender: admin})

	assert.Equal(t, 1, res.Success)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, domain.StageValidation, res.Errors[0].Stage)
	assert.Equal(t, "invalid certificate request: period must be at most 100 characters", res.Errors[0].Error)
	assert.Equal(t, domain.StageValidation, res.Errors[1].Stage)
	assert.Contains(t, res.Errors[1].Error, "tier_id is required")
	assert.Len(t, f.repo.rows, 1)
}

func TestCreate_InvalidSpec(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), domain.CreateInput{IssueSpec: domain.IssueSpec{EmployeeID: 1, TierID: 1}, Sender: admin})
	assert.ErrorIs(t, err, domain.ErrInvalidSpec)
	assert.Empty(t, f.repo.rows)
}
