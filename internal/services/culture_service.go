// Package services provides business logic services for the culturology API.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"culturology/internal/config"
	"culturology/internal/models"
	"culturology/internal/observability"
	"culturology/internal/serviceinterfaces"
	contextutils "culturology/internal/utils"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// CultureServiceInterface defines the interface for culture services
type CultureServiceInterface = serviceinterfaces.CultureService

// CultureService stores cultures and their galleries
type CultureService struct {
	db     *sql.DB
	logger *observability.Logger
}

var _ CultureServiceInterface = (*CultureService)(nil)

// NewCultureService creates a new CultureService instance
func NewCultureService(db *sql.DB, logger *observability.Logger) *CultureService {
	return &CultureService{db: db, logger: logger}
}

const cultureColumns = `id, slug, name, region, location, population, language, about, traditions, lifestyle, latitude, longitude`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCulture(row rowScanner) (*models.Culture, error) {
	var (
		c                                                         models.Culture
		region, location, language, about, traditions, lifestyle sql.NullString
		population                                                sql.NullInt64
		lat, lng                                                  sql.NullFloat64
	)
	if err := row.Scan(&c.ID, &c.Slug, &c.Name, &region, &location, &population, &language,
		&about, &traditions, &lifestyle, &lat, &lng); err != nil {
		return nil, err
	}
	c.Region = nullString(region)
	c.Location = nullString(location)
	c.Language = nullString(language)
	c.About = nullString(about)
	c.Traditions = nullString(traditions)
	c.Lifestyle = nullString(lifestyle)
	if population.Valid {
		c.Population = &population.Int64
	}
	if lat.Valid {
		c.Latitude = &lat.Float64
	}
	if lng.Valid {
		c.Longitude = &lng.Float64
	}
	c.Gallery = []models.CultureImage{}
	return &c, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func cultureNotFound(slug string) error {
	return contextutils.NewAppError(contextutils.ErrorCodeCultureNotFound, contextutils.SeverityInfo, "Culture not found", slug)
}

func slugTaken(slug string) error {
	return contextutils.NewAppError(contextutils.ErrorCodeRecordExists, contextutils.SeverityInfo, "Slug already exists", slug)
}

// FindBySlug returns the culture and its gallery. The lookup is an exact match on the unique slug.
func (s *CultureService) FindBySlug(ctx context.Context, slug string) (result *models.Culture, err error) {
	ctx, span := observability.TraceCultureFunction(ctx, "find_by_slug", observability.AttributeCultureSlug(slug))
	defer observability.FinishSpan(span, &err)

	return s.findBySlug(ctx, s.db, slug)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *CultureService) findBySlug(ctx context.Context, q querier, slug string) (*models.Culture, error) {
	row := q.QueryRowContext(ctx, `SELECT `+cultureColumns+` FROM cultures WHERE slug = $1`, slug)
	c, err := scanCulture(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cultureNotFound(slug)
	}
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to load culture %s: %v", slug, err)
	}

	if err := s.loadGalleries(ctx, q, []*models.Culture{c}); err != nil {
		return nil, err
	}
	return c, nil
}

// loadGalleries fills Gallery for every culture with a single query.
func (s *CultureService) loadGalleries(ctx context.Context, q querier, cultures []*models.Culture) error {
	if len(cultures) == 0 {
		return nil
	}

	byID := make(map[int]*models.Culture, len(cultures))
	placeholders := make([]string, 0, len(cultures))
	args := make([]any, 0, len(cultures))
	for i, c := range cultures {
		byID[c.ID] = c
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, c.ID)
	}

	query := `SELECT id, culture_id, url, caption FROM culture_images
		WHERE culture_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY culture_id, position, id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to load galleries: %v", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			img       models.CultureImage
			cultureID int
			caption   sql.NullString
		)
		if err := rows.Scan(&img.ID, &cultureID, &img.URL, &caption); err != nil {
			return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to scan gallery image: %v", err)
		}
		img.Caption = nullString(caption)
		if c, ok := byID[cultureID]; ok {
			c.Gallery = append(c.Gallery, img)
		}
	}
	return rows.Err()
}

func (s *CultureService) queryCultures(ctx context.Context, query string, args ...any) ([]models.Culture, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to query cultures: %v", err)
	}
	defer func() { _ = rows.Close() }()

	var ptrs []*models.Culture
	for rows.Next() {
		c, err := scanCulture(rows)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to scan culture: %v", err)
		}
		ptrs = append(ptrs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to iterate cultures: %v", err)
	}

	if err := s.loadGalleries(ctx, s.db, ptrs); err != nil {
		return nil, err
	}

	result := make([]models.Culture, 0, len(ptrs))
	for _, c := range ptrs {
		result = append(result, *c)
	}
	return result, nil
}

// ListCultures returns a page of cultures ordered by id.
func (s *CultureService) ListCultures(ctx context.Context, skip, limit int) (result []models.Culture, err error) {
	skip, limit = clampPage(skip, limit, config.DefaultCultureListLimit)
	ctx, span := observability.TraceCultureFunction(ctx, "list_cultures",
		observability.AttributeSkip(skip), observability.AttributeLimit(limit))
	defer observability.FinishSpan(span, &err)

	return s.queryCultures(ctx, `SELECT `+cultureColumns+` FROM cultures ORDER BY id LIMIT $1 OFFSET $2`, limit, skip)
}

// SearchCultures matches query as a case-insensitive substring of name or slug,
// optionally narrowed by a region substring.
func (s *CultureService) SearchCultures(ctx context.Context, query, region string, skip, limit int) (result []models.Culture, err error) {
	skip, limit = clampPage(skip, limit, config.DefaultCultureSearchLimit)
	ctx, span := observability.TraceCultureFunction(ctx, "search_cultures",
		observability.AttributeSearch(query), observability.AttributeSkip(skip), observability.AttributeLimit(limit))
	defer observability.FinishSpan(span, &err)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeMissingRequired, contextutils.SeverityWarn, "Missing required field", "query is required")
	}

	pattern := likePattern(query)
	args := []any{pattern, pattern}
	where := `(LOWER(name) LIKE LOWER($1) ESCAPE '\' OR LOWER(slug) LIKE LOWER($2) ESCAPE '\')`
	if region = strings.TrimSpace(region); region != "" {
		args = append(args, likePattern(region))
		where += fmt.Sprintf(` AND LOWER(region) LIKE LOWER($%d) ESCAPE '\'`, len(args))
	}
	args = append(args, limit, skip)

	sqlQuery := fmt.Sprintf(`SELECT %s FROM cultures WHERE %s ORDER BY name, id LIMIT $%d OFFSET $%d`,
		cultureColumns, where, len(args)-1, len(args))

	return s.queryCultures(ctx, sqlQuery, args...)
}

// likePattern wraps s in % after escaping LIKE metacharacters.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// CreateCulture inserts the culture and its gallery in one transaction.
func (s *CultureService) CreateCulture(ctx context.Context, in models.CultureInput) (result *models.Culture, err error) {
	ctx, span := observability.TraceCultureFunction(ctx, "create_culture", observability.AttributeCultureSlug(in.Slug))
	defer observability.FinishSpan(span, &err)

	if err := contextutils.ValidateStruct(in); err != nil {
		return nil, err
	}

	c := in.ToCulture()
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if exists, err := slugExists(ctx, tx, c.Slug); err != nil {
			return err
		} else if exists {
			return slugTaken(c.Slug)
		}

		if err := insertCulture(ctx, tx, c); err != nil {
			return err
		}
		return insertGallery(ctx, tx, c.ID, c.Gallery)
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(observability.AttributeCultureID(c.ID))
	s.logger.Info(ctx, "Created culture", map[string]interface{}{"culture_id": c.ID, "slug": c.Slug})
	return s.FindBySlug(ctx, c.Slug)
}

// UpdateCulture applies the fields present in patch. A non-nil gallery replaces the existing one.
func (s *CultureService) UpdateCulture(ctx context.Context, slug string, patch models.CulturePatch) (result *models.Culture, err error) {
	ctx, span := observability.TraceCultureFunction(ctx, "update_culture", observability.AttributeCultureSlug(slug))
	defer observability.FinishSpan(span, &err)

	if err := contextutils.ValidateStruct(patch); err != nil {
		return nil, err
	}
	if patch.Gallery != nil {
		for _, img := range *patch.Gallery {
			if err := contextutils.ValidateStruct(img); err != nil {
				return nil, err
			}
		}
	}

	var newSlug string
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		c, err := s.findBySlug(ctx, tx, slug)
		if err != nil {
			return err
		}

		if patch.Slug != nil && *patch.Slug != slug {
			if exists, err := slugExists(ctx, tx, *patch.Slug); err != nil {
				return err
			} else if exists {
				return slugTaken(*patch.Slug)
			}
		}

		patch.Apply(c)
		newSlug = c.Slug

		_, err = tx.ExecContext(ctx, `UPDATE cultures SET
			slug = $1, name = $2, region = $3, location = $4, population = $5, language = $6,
			about = $7, traditions = $8, lifestyle = $9, latitude = $10, longitude = $11,
			updated_at = CURRENT_TIMESTAMP
			WHERE id = $12`,
			c.Slug, c.Name, c.Region, c.Location, c.Population, c.Language,
			c.About, c.Traditions, c.Lifestyle, c.Latitude, c.Longitude, c.ID)
		if isUniqueViolation(err) {
			return slugTaken(c.Slug)
		}
		if err != nil {
			return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to update culture: %v", err)
		}

		if patch.Gallery != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM culture_images WHERE culture_id = $1`, c.ID); err != nil {
				return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to clear gallery: %v", err)
			}
			return insertGallery(ctx, tx, c.ID, *patch.Gallery)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.FindBySlug(ctx, newSlug)
}

// DeleteCulture removes the culture, its gallery, and its stored quiz entries.
func (s *CultureService) DeleteCulture(ctx context.Context, slug string) (err error) {
	ctx, span := observability.TraceCultureFunction(ctx, "delete_culture", observability.AttributeCultureSlug(slug))
	defer observability.FinishSpan(span, &err)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var id int
		err := tx.QueryRowContext(ctx, `SELECT id FROM cultures WHERE slug = $1`, slug).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return cultureNotFound(slug)
		}
		if err != nil {
			return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to load culture: %v", err)
		}

		for _, stmt := range []string{
			`DELETE FROM culture_images WHERE culture_id = $1`,
			`DELETE FROM quizzes WHERE culture_id = $1`,
			`DELETE FROM cultures WHERE id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return contextutils.WrapErrorf(contextutils.ErrDatabaseTransaction, "failed to delete culture %s: %v", slug, err)
			}
		}

		s.logger.Info(ctx, "Deleted culture", map[string]interface{}{"culture_id": id, "slug": slug})
		return nil
	})
}

// MapPoints returns every culture that has both coordinates.
func (s *CultureService) MapPoints(ctx context.Context) (result []models.CulturePoint, err error) {
	ctx, span := observability.TraceCultureFunction(ctx, "map_points")
	defer observability.FinishSpan(span, &err)

	rows, err := s.db.QueryContext(ctx, `SELECT slug, name, latitude, longitude FROM cultures
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL ORDER BY id`)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to query map points: %v", err)
	}
	defer func() { _ = rows.Close() }()

	result = []models.CulturePoint{}
	for rows.Next() {
		var p models.CulturePoint
		if err := rows.Scan(&p.Slug, &p.Name, &p.Lat, &p.Lng); err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to scan map point: %v", err)
		}
		result = append(result, p)
	}
	span.SetAttributes(attribute.Int("map.points", len(result)))
	return result, rows.Err()
}

func (s *CultureService) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return contextutils.WrapErrorf(contextutils.ErrDatabaseTransaction, "failed to begin transaction: %v", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Error(ctx, "Failed to rollback transaction", rbErr)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return contextutils.WrapErrorf(contextutils.ErrDatabaseTransaction, "failed to commit transaction: %v", err)
	}
	return nil
}

func slugExists(ctx context.Context, q querier, slug string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM cultures WHERE slug = $1`, slug).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to check slug: %v", err)
	}
	return true, nil
}

func insertGallery(ctx context.Context, tx *sql.Tx, cultureID int, images []models.CultureImage) error {
	for i, img := range images {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO culture_images (culture_id, position, url, caption) VALUES ($1, $2, $3, $4)`,
			cultureID, i, img.URL, img.Caption); err != nil {
			return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to insert gallery image: %v", err)
		}
	}
	return nil
}

// insertCulture writes the culture row and sets c.ID. The unique index on slug is the
// last word when two creates race past slugExists.
func insertCulture(ctx context.Context, q querier, c *models.Culture) error {
	err := q.QueryRowContext(ctx, `INSERT INTO cultures
		(slug, name, region, location, population, language, about, traditions, lifestyle, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		c.Slug, c.Name, c.Region, c.Location, c.Population, c.Language,
		c.About, c.Traditions, c.Lifestyle, c.Latitude, c.Longitude,
	).Scan(&c.ID)
	if isUniqueViolation(err) {
		return slugTaken(c.Slug)
	}
	if err != nil {
		return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to insert culture: %v", err)
	}
	return nil
}

// isUniqueViolation reports a duplicate key from lib/pq (23505) or modernc sqlite.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// clampPage applies the default limit and keeps both values in range.
func clampPage(skip, limit, defaultLimit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > config.MaxPageLimit {
		limit = config.MaxPageLimit
	}
	return skip, limit
}
