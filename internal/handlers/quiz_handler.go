package handlers

import (
	"net/http"

	"culturology/internal/observability"
	"culturology/internal/services"

	"github.com/gin-gonic/gin"
)

// QuizSourceHeader tells clients which path produced the quiz
const QuizSourceHeader = "X-Quiz-Source"

// QuizHandler serves generated quizzes
type QuizHandler struct {
	generator services.QuizGeneratorInterface
	logger    *observability.Logger
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(generator services.QuizGeneratorInterface, logger *observability.Logger) *QuizHandler {
	return &QuizHandler{
		generator: generator,
		logger:    logger,
	}
}

// GenerateQuiz handles GET /api/cultures/:slug/quiz
func (h *QuizHandler) GenerateQuiz(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "generate_quiz",
		observability.AttributeCultureSlug(c.Param("slug")),
	)
	var err error
	defer observability.FinishSpan(span, &err)

	result, err := h.generator.Generate(ctx, c.Param("slug"))
	if err != nil {
		HandleAppError(c, err)
		return
	}

	span.SetAttributes(observability.AttributeQuizSource(string(result.Source)))
	c.Header(QuizSourceHeader, string(result.Source))
	c.JSON(http.StatusOK, result.Items)
}
