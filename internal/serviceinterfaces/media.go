package serviceinterfaces

import (
	"context"

	"culturology/internal/models"
)

// MediaService defines CRUD over media items
type MediaService interface {
	ListMedia(ctx context.Context, skip, limit int) ([]models.MediaItem, error)
	GetMedia(ctx context.Context, id int) (*models.MediaItem, error)
	CreateMedia(ctx context.Context, in models.MediaItemInput) (*models.MediaItem, error)
	DeleteMedia(ctx context.Context, id int) error
}
