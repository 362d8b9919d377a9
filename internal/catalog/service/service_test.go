package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cdomain "github.com/haythamforever/HonorHub/internal/catalog/domain"
)

type fakeRepo struct {
	cdomain.Repository // unimplemented methods panic
	tiers              map[int64]cdomain.Tier
	templates          map[int64]cdomain.Template
	certsByTier        map[int64]int
	certsByTemplate    map[int64]int
	deleted            []int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		tiers:           map[int64]cdomain.Tier{1: {ID: 1, Name: "Gold"}, 2: {ID: 2, Name: "Silver"}},
		templates:       map[int64]cdomain.Template{10: {ID: 10, Name: "Classic", IsDefault: true}, 11: {ID: 11, Name: "Modern"}, 12: {ID: 12, Name: "Minimal"}},
		certsByTier:     map[int64]int{1: 3},
		certsByTemplate: map[int64]int{11: 1},
	}
}

func (f *fakeRepo) GetTier(_ context.Context, id int64) (cdomain.Tier, error) {
	t, ok := f.tiers[id]
	if !ok {
		return t, cdomain.ErrNotFound
	}
	return t, nil
}

func (f *fakeRepo) GetTemplate(_ context.Context, id int64) (cdomain.Template, error) {
	t, ok := f.templates[id]
	if !ok {
		return t, cdomain.ErrNotFound
	}
	return t, nil
}

func (f *fakeRepo) CountCertificatesByTier(_ context.Context, id int64) (int, error) {
	return f.certsByTier[id], nil
}

func (f *fakeRepo) CountCertificatesByTemplate(_ context.Context, id int64) (int, error) {
	return f.certsByTemplate[id], nil
}

func (f *fakeRepo) DeleteTier(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	delete(f.tiers, id)
	return nil
}

func (f *fakeRepo) DeleteTemplate(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	delete(f.templates, id)
	return nil
}

func (f *fakeRepo) SetDefaultTemplate(_ context.Context, id int64) error {
	if _, ok := f.templates[id]; !ok {
		return cdomain.ErrNotFound
	}
	for k, t := range f.templates {
		t.IsDefault = k == id
		f.templates[k] = t
	}
	return nil
}

func TestDeleteTier(t *testing.T) {
	repo := newFakeRepo()
	s := New(repo)
	ctx := context.Background()

	assert.ErrorIs(t, s.DeleteTier(ctx, 1), cdomain.ErrTierInUse)
	assert.ErrorIs(t, s.DeleteTier(ctx, 99), cdomain.ErrNotFound)
	require.NoError(t, s.DeleteTier(ctx, 2))
	assert.Equal(t, []int64{2}, repo.deleted)
}

func TestDeleteTemplate(t *testing.T) {
	repo := newFakeRepo()
	s := New(repo)
	ctx := context.Background()

	assert.ErrorIs(t, s.DeleteTemplate(ctx, 10), cdomain.ErrTemplateIsDefault)
	assert.ErrorIs(t, s.DeleteTemplate(ctx, 11), cdomain.ErrTemplateInUse)
	require.NoError(t, s.DeleteTemplate(ctx, 12))
	assert.Equal(t, []int64{12}, repo.deleted)
}

func TestSetDefaultTemplate_LeavesExactlyOneDefault(t *testing.T) {
	repo := newFakeRepo()
	s := New(repo)

	got, err := s.SetDefaultTemplate(context.Background(), 12)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)

	defaults := 0
	for _, tpl := range repo.templates {
		if tpl.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)

	_, err = s.SetDefaultTemplate(context.Background(), 404)
	assert.ErrorIs(t, err, cdomain.ErrNotFound)
}
