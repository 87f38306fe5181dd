package serviceinterfaces

import (
	"context"

	"culturology/internal/models"
)

// QuizSource says which path produced a quiz
type QuizSource string

// Quiz sources
const (
	QuizSourceAI       QuizSource = "ai"
	QuizSourceFallback QuizSource = "fallback"
)

// QuizResult is a generated quiz of exactly five items with ids 1..5.
type QuizResult struct {
	Source QuizSource
	Items  []models.QuizItem
}

// QuizGenerator builds a quiz for a culture
type QuizGenerator interface {
	// Generate fails only when the culture does not exist or the repository errors;
	// provider problems produce a fallback quiz.
	Generate(ctx context.Context, slug string) (*QuizResult, error)
}

// QuizEntryService defines CRUD over stored quiz entries
type QuizEntryService interface {
	ListEntries(ctx context.Context, cultureID *int, skip, limit int) ([]models.QuizEntry, error)
	GetEntry(ctx context.Context, id int) (*models.QuizEntry, error)
	CreateEntry(ctx context.Context, in models.QuizEntryInput) (*models.QuizEntry, error)
	UpdateEntry(ctx context.Context, id int, patch models.QuizEntryPatch) (*models.QuizEntry, error)
	DeleteEntry(ctx context.Context, id int) error
}
