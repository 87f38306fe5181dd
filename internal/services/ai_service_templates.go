package services

import (
	"embed"
	"strings"
	"text/template"

	"culturology/internal/models"
)

//go:embed templates/*.tmpl
var aiTemplatesFS embed.FS

// Template names as constants
const (
	QuizPromptTemplate = "quiz_prompt.tmpl"
	ChatPromptTemplate = "chat_prompt.tmpl"
)

// AITemplateData holds data for rendering AI prompt templates
type AITemplateData struct {
	// Quiz prompt
	Culture models.PromptFields

	// Chat prompt
	Context  string
	Question string
}

// AITemplateManager manages AI prompt templates
type AITemplateManager struct {
	templates *template.Template
}

// NewAITemplateManager parses the embedded prompt templates
func NewAITemplateManager() (result0 *AITemplateManager, err error) {
	templates, err := template.New("").Option("missingkey=error").ParseFS(aiTemplatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}

	return &AITemplateManager{
		templates: templates,
	}, nil
}

// RenderTemplate renders a template with the given data
func (tm *AITemplateManager) RenderTemplate(templateName string, data AITemplateData) (result0 string, err error) {
	var buf strings.Builder
	err = tm.templates.ExecuteTemplate(&buf, templateName, data)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
