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

// QuizEntryServiceInterface defines the interface for stored quiz entries
type QuizEntryServiceInterface = serviceinterfaces.QuizEntryService

// QuizEntryService manages hand-written question/answer pairs
type QuizEntryService struct {
	db     *sql.DB
	logger *observability.Logger
}

var _ QuizEntryServiceInterface = (*QuizEntryService)(nil)

// NewQuizEntryService creates a new QuizEntryService instance
func NewQuizEntryService(db *sql.DB, logger *observability.Logger) *QuizEntryService {
	return &QuizEntryService{db: db, logger: logger}
}

func entryNotFound() error {
	return contextutils.NewAppError(contextutils.ErrorCodeRecordNotFound, contextutils.SeverityInfo, "Quiz not found", "")
}

// ListEntries returns entries ordered by id, optionally limited to one culture.
func (s *QuizEntryService) ListEntries(ctx context.Context, cultureID *int, skip, limit int) (result []models.QuizEntry, err error) {
	skip, limit = clampPage(skip, limit, config.DefaultQuizEntryLimit)
	ctx, span := observability.TraceQuizFunction(ctx, "list_entries",
		observability.AttributeSkip(skip), observability.AttributeLimit(limit))
	defer observability.FinishSpan(span, &err)

	var rows *sql.Rows
	if cultureID != nil {
		span.SetAttributes(observability.AttributeCultureID(*cultureID))
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, culture_id, question, answer FROM quizzes WHERE culture_id = $1 ORDER BY id LIMIT $2 OFFSET $3`,
			*cultureID, limit, skip)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, culture_id, question, answer FROM quizzes ORDER BY id LIMIT $1 OFFSET $2`,
			limit, skip)
	}
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to list quiz entries: %v", err)
	}
	defer func() { _ = rows.Close() }()

	result = []models.QuizEntry{}
	for rows.Next() {
		var e models.QuizEntry
		if err := rows.Scan(&e.ID, &e.CultureID, &e.Question, &e.Answer); err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to scan quiz entry: %v", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// GetEntry returns one entry by id
func (s *QuizEntryService) GetEntry(ctx context.Context, id int) (result *models.QuizEntry, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "get_entry", observability.AttributeID(id))
	defer observability.FinishSpan(span, &err)

	var e models.QuizEntry
	err = s.db.QueryRowContext(ctx, `SELECT id, culture_id, question, answer FROM quizzes WHERE id = $1`, id).
		Scan(&e.ID, &e.CultureID, &e.Question, &e.Answer)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entryNotFound()
	}
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to get quiz entry %d: %v", id, err)
	}
	return &e, nil
}

// CreateEntry stores a new entry. The referenced culture must exist.
func (s *QuizEntryService) CreateEntry(ctx context.Context, in models.QuizEntryInput) (result *models.QuizEntry, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "create_entry", observability.AttributeCultureID(in.CultureID))
	defer observability.FinishSpan(span, &err)

	if err := contextutils.ValidateStruct(in); err != nil {
		return nil, err
	}

	var one int
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM cultures WHERE id = $1`, in.CultureID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeCultureNotFound, contextutils.SeverityInfo, "Culture not found", "")
	}
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to check culture %d: %v", in.CultureID, err)
	}

	e := models.QuizEntry{CultureID: in.CultureID, Question: in.Question, Answer: in.Answer}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO quizzes (culture_id, question, answer) VALUES ($1, $2, $3) RETURNING id`,
		e.CultureID, e.Question, e.Answer).Scan(&e.ID)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to insert quiz entry: %v", err)
	}

	s.logger.Info(ctx, "Created quiz entry", map[string]interface{}{"quiz_id": e.ID, "culture_id": e.CultureID})
	return &e, nil
}

// UpdateEntry changes the question and/or answer
func (s *QuizEntryService) UpdateEntry(ctx context.Context, id int, patch models.QuizEntryPatch) (result *models.QuizEntry, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "update_entry", observability.AttributeID(id))
	defer observability.FinishSpan(span, &err)

	if err := contextutils.ValidateStruct(patch); err != nil {
		return nil, err
	}

	e, err := s.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Question != nil {
		e.Question = *patch.Question
	}
	if patch.Answer != nil {
		e.Answer = *patch.Answer
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE quizzes SET question = $1, answer = $2 WHERE id = $3`,
		e.Question, e.Answer, id); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to update quiz entry %d: %v", id, err)
	}
	return e, nil
}

// DeleteEntry removes an entry
func (s *QuizEntryService) DeleteEntry(ctx context.Context, id int) (err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "delete_entry", observability.AttributeID(id))
	defer observability.FinishSpan(span, &err)

	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to delete quiz entry %d: %v", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entryNotFound()
	}
	return nil
}
