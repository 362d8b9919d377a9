package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	sdomain "github.com/haythamforever/HonorHub/internal/settings/domain"
)

type Service struct{ repo sdomain.Repository }

func New(repo sdomain.Repository) *Service { return &Service{repo: repo} }

func (s *Service) lookup(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := s.repo.Get(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}
	v = strings.TrimSpace(v)
	return v, v != "", nil
}

func (s *Service) GetString(ctx context.Context, key string, def string) (string, error) {
	v, ok, err := s.lookup(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

func (s *Service) GetDuration(ctx context.Context, key string, def time.Duration) (time.Duration, error) {
	v, ok, err := s.lookup(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, nil
	}
	return d, nil
}

func (s *Service) GetInt(ctx context.Context, key string, def int) (int, error) {
	v, ok, err := s.lookup(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, nil
	}
	return n, nil
}

// GetBool accepts "true"/"false"/"1"/"0" and falls back to def otherwise.
func (s *Service) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	v, ok, err := s.lookup(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, nil
	}
	return b, nil
}
