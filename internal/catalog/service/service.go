package service

import (
	"context"

	cdomain "github.com/haythamforever/HonorHub/internal/catalog/domain"
)

// Service guards catalog mutations that would orphan issued certificates.
type Service struct {
	repo cdomain.Repository
}

func New(repo cdomain.Repository) *Service { return &Service{repo: repo} }

func (s *Service) ListTiers(ctx context.Context) ([]cdomain.Tier, error) { return s.repo.ListTiers(ctx) }

func (s *Service) ListTemplates(ctx context.Context) ([]cdomain.Template, error) {
	return s.repo.ListTemplates(ctx)
}

// SetDefaultTemplate makes id the only default template.
func (s *Service) SetDefaultTemplate(ctx context.Context, id int64) (cdomain.Template, error) {
	if err := s.repo.SetDefaultTemplate(ctx, id); err != nil {
		return cdomain.Template{}, err
	}
	return s.repo.GetTemplate(ctx, id)
}

// DeleteTier refuses while any certificate references the tier.
func (s *Service) DeleteTier(ctx context.Context, id int64) error {
	if _, err := s.repo.GetTier(ctx, id); err != nil {
		return err
	}
	n, err := s.repo.CountCertificatesByTier(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return cdomain.ErrTierInUse
	}
	return s.repo.DeleteTier(ctx, id)
}

// DeleteTemplate refuses for the default template or while any certificate references it.
func (s *Service) DeleteTemplate(ctx context.Context, id int64) error {
	t, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return err
	}
	if t.IsDefault {
		return cdomain.ErrTemplateIsDefault
	}
	n, err := s.repo.CountCertificatesByTemplate(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return cdomain.ErrTemplateInUse
	}
	return s.repo.DeleteTemplate(ctx, id)
}
