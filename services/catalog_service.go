package services

import (
	"context"

	"go.uber.org/zap"

	"ecoChallengeAPI/internal/apperr"
	"ecoChallengeAPI/internal/catalog"
	"ecoChallengeAPI/internal/store"
	"ecoChallengeAPI/internal/types/category"
	"ecoChallengeAPI/internal/types/challenge"
)

type CatalogService struct {
	catalog store.CatalogStore
	logger  *zap.Logger
}

func NewCatalogService(catalog store.CatalogStore, logger *zap.Logger) *CatalogService {
	return &CatalogService{catalog: catalog, logger: logger}
}

// SeedDefaults loads the built-in catalog into the store. Existing ids are
// left untouched.
func (s *CatalogService) SeedDefaults(ctx context.Context) error {
	if err := s.catalog.SeedCatalog(ctx, catalog.Categories(), catalog.Challenges()); err != nil {
		return internal(s.logger, "failed to seed catalog", err)
	}
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]category.Category, error) {
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, internal(s.logger, "Could not fetch categories", err)
	}
	return categories, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*category.Category, error) {
	c, err := s.catalog.GetCategory(ctx, id)
	if err != nil {
		return nil, passOrInternal(s.logger, "Could not fetch category", err)
	}
	return c, nil
}

func (s *CatalogService) ListChallengesByCategory(ctx context.Context, categoryID int64) ([]challenge.Challenge, error) {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	challenges, err := s.catalog.ListChallengesByCategory(ctx, categoryID)
	if err != nil {
		return nil, internal(s.logger, "Could not fetch challenges", err)
	}
	return challenges, nil
}

func (s *CatalogService) ListChallenges(ctx context.Context) ([]challenge.Challenge, error) {
	challenges, err := s.catalog.ListChallenges(ctx)
	if err != nil {
		return nil, internal(s.logger, "Could not fetch challenges", err)
	}
	return challenges, nil
}

func (s *CatalogService) GetChallenge(ctx context.Context, id int64) (*challenge.Challenge, error) {
	c, err := s.catalog.GetChallenge(ctx, id)
	if err != nil {
		return nil, passOrInternal(s.logger, "Could not fetch challenge", err)
	}
	return c, nil
}

// internal logs a store failure and hides it behind a generic error.
func internal(logger *zap.Logger, message string, err error) error {
	logger.Error(message, zap.Error(err))
	return apperr.Internal(message, err)
}

// passOrInternal forwards classified errors and wraps everything else.
func passOrInternal(logger *zap.Logger, message string, err error) error {
	if apperr.KindOf(err) != apperr.KindInternal {
		return err
	}
	return internal(logger, message, err)
}
