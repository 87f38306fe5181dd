package services

import (
	"context"
	"database/sql"
	"errors"

	"culturology/internal/config"
	"culturology/internal/models"
	"culturology/internal/observability"
	"culturology/internal/serviceinterfaces"
	contextutils "culturology/internal/utils"
)

// MediaServiceInterface defines the interface for media items
type MediaServiceInterface = serviceinterfaces.MediaService

// MediaService manages the video and audio gallery
type MediaService struct {
	db     *sql.DB
	logger *observability.Logger
}

var _ MediaServiceInterface = (*MediaService)(nil)

// NewMediaService creates a new MediaService instance
func NewMediaService(db *sql.DB, logger *observability.Logger) *MediaService {
	return &MediaService{db: db, logger: logger}
}

const mediaColumns = `id, type, url, thumbnail, caption, subtitles_url, duration`

func scanMedia(row rowScanner) (*models.MediaItem, error) {
	var (
		m                             models.MediaItem
		thumbnail, caption, subtitles sql.NullString
		duration                      sql.NullInt64
	)
	if err := row.Scan(&m.ID, &m.Type, &m.URL, &thumbnail, &caption, &subtitles, &duration); err != nil {
		return nil, err
	}
	m.Thumbnail = nullString(thumbnail)
	m.Caption = nullString(caption)
	m.SubtitlesURL = nullString(subtitles)
	if duration.Valid {
		d := int(duration.Int64)
		m.Duration = &d
	}
	return &m, nil
}

func mediaNotFound() error {
	return contextutils.NewAppError(contextutils.ErrorCodeRecordNotFound, contextutils.SeverityInfo, "Media item not found", "")
}

// ListMedia returns a page of media items ordered by id
func (s *MediaService) ListMedia(ctx context.Context, skip, limit int) (result []models.MediaItem, err error) {
	skip, limit = clampPage(skip, limit, config.DefaultMediaLimit)
	ctx, span := observability.TraceMediaFunction(ctx, "list_media",
		observability.AttributeSkip(skip), observability.AttributeLimit(limit))
	defer observability.FinishSpan(span, &err)

	rows, err := s.db.QueryContext(ctx, `SELECT `+mediaColumns+` FROM media_items ORDER BY id LIMIT $1 OFFSET $2`, limit, skip)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to list media: %v", err)
	}
	defer func() { _ = rows.Close() }()

	result = []models.MediaItem{}
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to scan media item: %v", err)
		}
		result = append(result, *m)
	}
	return result, rows.Err()
}

// GetMedia returns one media item by id
func (s *MediaService) GetMedia(ctx context.Context, id int) (result *models.MediaItem, err error) {
	ctx, span := observability.TraceMediaFunction(ctx, "get_media", observability.AttributeID(id))
	defer observability.FinishSpan(span, &err)

	m, err := scanMedia(s.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media_items WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, mediaNotFound()
	}
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to get media item %d: %v", id, err)
	}
	return m, nil
}

// CreateMedia stores a new media item
func (s *MediaService) CreateMedia(ctx context.Context, in models.MediaItemInput) (result *models.MediaItem, err error) {
	ctx, span := observability.TraceMediaFunction(ctx, "create_media")
	defer observability.FinishSpan(span, &err)

	if err := contextutils.ValidateStruct(in); err != nil {
		return nil, err
	}

	m := models.MediaItem{
		Type:         in.Type,
		URL:          in.URL,
		Thumbnail:    in.Thumbnail,
		Caption:      in.Caption,
		SubtitlesURL: in.SubtitlesURL,
		Duration:     in.Duration,
	}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO media_items (type, url, thumbnail, caption, subtitles_url, duration)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		m.Type, m.URL, m.Thumbnail, m.Caption, m.SubtitlesURL, m.Duration).Scan(&m.ID)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to insert media item: %v", err)
	}

	span.SetAttributes(observability.AttributeID(m.ID))
	s.logger.Info(ctx, "Created media item", map[string]interface{}{"media_id": m.ID, "type": m.Type})
	return &m, nil
}

// DeleteMedia removes a media item
func (s *MediaService) DeleteMedia(ctx context.Context, id int) (err error) {
	ctx, span := observability.TraceMediaFunction(ctx, "delete_media", observability.AttributeID(id))
	defer observability.FinishSpan(span, &err)

	res, err := s.db.ExecContext(ctx, `DELETE FROM media_items WHERE id = $1`, id)
	if err != nil {
		return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to delete media item %d: %v", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return mediaNotFound()
	}
	return nil
}
