package serviceinterfaces

import (
	"context"

	"culturology/internal/models"
)

// CultureRepository resolves cultures by slug.
type CultureRepository interface {
	// FindBySlug returns contextutils.ErrCultureNotFound when no culture has the slug
	FindBySlug(ctx context.Context, slug string) (*models.Culture, error)
}

// CultureService defines culture CRUD, search, and map queries
type CultureService interface {
	CultureRepository

	ListCultures(ctx context.Context, skip, limit int) ([]models.Culture, error)
	SearchCultures(ctx context.Context, query, region string, skip, limit int) ([]models.Culture, error)
	CreateCulture(ctx context.Context, in models.CultureInput) (*models.Culture, error)
	UpdateCulture(ctx context.Context, slug string, patch models.CulturePatch) (*models.Culture, error)
	DeleteCulture(ctx context.Context, slug string) error
	MapPoints(ctx context.Context) ([]models.CulturePoint, error)
}
