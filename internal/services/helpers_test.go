package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"culturology/internal/config"
	"culturology/internal/database"
	"culturology/internal/models"
	"culturology/internal/observability"
	"culturology/internal/serviceinterfaces"
	contextutils "culturology/internal/utils"

	"github.com/stretchr/testify/require"
)

// newTestDB returns a migrated sqlite database that lives for the test.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := "sqlite://" + filepath.Join(t.TempDir(), "culturology.db")
	db, err := database.NewManager(observability.NewNopLogger()).InitDBWithConfig(config.DatabaseConfig{URL: url})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func float64Ptr(f float64) *float64 { return &f }

func int64Ptr(i int64) *int64 { return &i }

// fakeCultureRepository serves cultures from memory
type fakeCultureRepository struct {
	cultures map[string]*models.Culture
	err      error
}

func (r *fakeCultureRepository) FindBySlug(_ context.Context, slug string) (*models.Culture, error) {
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.cultures[slug]
	if !ok {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeCultureNotFound, contextutils.SeverityInfo, "Culture not found", slug)
	}
	return c, nil
}

// fakeAIClient returns a canned response and records the calls it sees
type fakeAIClient struct {
	mu       sync.Mutex
	response string
	err      error
	requests []serviceinterfaces.CompletionRequest
}

func (f *fakeAIClient) Complete(_ context.Context, req serviceinterfaces.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.response, f.err
}

func (f *fakeAIClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func maoriCulture() *models.Culture {
	return &models.Culture{
		ID:         1,
		Slug:       "maori",
		Name:       "Māori",
		Region:     models.StringPtr("Oceania"),
		Language:   models.StringPtr("Te Reo Māori"),
		About:      models.StringPtr(""),
		Traditions: models.StringPtr(""),
		Lifestyle:  models.StringPtr(""),
	}
}

const validQuizPayload = `{"questions":[
 {"id":1,"question":"Q1?","options":{"A":"a","B":"b","C":"c","D":"d"},"correct":"A"},
 {"id":2,"question":"Q2?","options":{"A":"a","B":"b","C":"c","D":"d"},"correct":"B"},
 {"id":3,"question":"Q3?","options":{"A":"a","B":"b","C":"c","D":"d"},"correct":"C"},
 {"id":4,"question":"Q4?","options":{"A":"a","B":"b","C":"c","D":"d"},"correct":"D"},
 {"id":5,"question":"Q5?","options":{"A":"a","B":"b","C":"c","D":"d"},"correct":"A"}
]}`
