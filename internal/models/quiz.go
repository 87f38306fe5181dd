package models

// QuizItem is one generated question. AI-generated items carry Options and Correct;
// fallback items carry Answer, which is always emitted even when empty.
type QuizItem struct {
	ID       int               `json:"id"`
	Question string            `json:"question"`
	Options  map[string]string `json:"options,omitempty"`
	Correct  string            `json:"correct,omitempty"`
	Answer   *string           `json:"answer,omitempty"`
}

// QuizEntry is a stored question/answer pair attached to a culture.
type QuizEntry struct {
	ID        int    `json:"id"`
	CultureID int    `json:"culture_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
}

// QuizEntryInput is the body of POST /api/quiz.
type QuizEntryInput struct {
	CultureID int    `json:"culture_id" validate:"required,gt=0"`
	Question  string `json:"question" validate:"required,min=5,max=300"`
	Answer    string `json:"answer" validate:"required,min=1,max=300"`
}

// QuizEntryPatch is the body of PUT /api/quiz/:id.
type QuizEntryPatch struct {
	Question *string `json:"question" validate:"omitempty,min=5,max=300"`
	Answer   *string `json:"answer" validate:"omitempty,min=1,max=300"`
}
