package services

import (
	"encoding/json"
	"strings"

	"culturology/internal/models"
	contextutils "culturology/internal/utils"

	"github.com/xeipuuv/gojsonschema"
)

// QuizLength is the number of items in every generated quiz
const QuizLength = 5

// QuizPayloadSchema is the shape an AI quiz response must have. Anything else is rejected whole.
const QuizPayloadSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {
      "type": "array",
      "minItems": 5,
      "maxItems": 5,
      "items": {
        "type": "object",
        "required": ["id", "question", "options", "correct"],
        "properties": {
          "id": {"type": ["integer", "string"]},
          "question": {"type": "string", "minLength": 1, "pattern": "\\S"},
          "options": {
            "type": "object",
            "required": ["A", "B", "C", "D"],
            "additionalProperties": false,
            "properties": {
              "A": {"type": "string", "minLength": 1, "pattern": "\\S"},
              "B": {"type": "string", "minLength": 1, "pattern": "\\S"},
              "C": {"type": "string", "minLength": 1, "pattern": "\\S"},
              "D": {"type": "string", "minLength": 1, "pattern": "\\S"}
            }
          },
          "correct": {"type": "string", "enum": ["A", "B", "C", "D"]}
        }
      }
    }
  }
}`

var quizSchema = mustCompileSchema(QuizPayloadSchema)

func mustCompileSchema(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(err)
	}
	return s
}

type quizPayload struct {
	Questions []struct {
		Question string            `json:"question"`
		Options  map[string]string `json:"options"`
		Correct  string            `json:"correct"`
	} `json:"questions"`
}

// ParseQuizPayload validates a raw provider response and returns the five items
// renumbered 1..5 in payload order. Code fences around the JSON are ignored.
func ParseQuizPayload(raw string) ([]models.QuizItem, error) {
	cleaned := cleanJSONResponse(raw)
	if cleaned == "" {
		return nil, contextutils.WrapError(contextutils.ErrAIResponseInvalid, "empty quiz payload")
	}

	result, err := quizSchema.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		// not JSON at all
		return nil, contextutils.WrapErrorf(contextutils.ErrAIResponseInvalid, "quiz payload is not valid JSON: %v", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, contextutils.WrapErrorf(contextutils.ErrAIResponseInvalid, "quiz payload failed schema validation: %s", strings.Join(msgs, "; "))
	}

	var payload quizPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrAIResponseInvalid, "failed to decode quiz payload: %v", err)
	}

	items := make([]models.QuizItem, 0, QuizLength)
	for i, q := range payload.Questions {
		items = append(items, models.QuizItem{
			ID:       i + 1,
			Question: q.Question,
			Options:  q.Options,
			Correct:  q.Correct,
		})
	}
	return items, nil
}
