package category

import (
	"context"
)

type Repository interface {
	FindCategory(ctx context.Context, merchant string) (string, error)
	CreateMapping(ctx context.Context, merchantPattern, preferredCategory string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest tries to find a preferred category for the given merchant name.
// Returns empty string if no mapping matches.
func (s *Service) Suggest(ctx context.Context, merchant string) (string, error) {
	return s.repo.FindCategory(ctx, merchant)
}

// Learn remembers a new mapping between a merchant pattern and a preferred
// category, so future submissions from the same merchant get prefilled.
func (s *Service) Learn(ctx context.Context, merchantPattern, preferredCategory string) error {
	return s.repo.CreateMapping(ctx, merchantPattern, preferredCategory)
}
