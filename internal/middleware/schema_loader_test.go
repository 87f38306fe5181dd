package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"culturology/api"
	"culturology/internal/observability"
	contextutils "culturology/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadAPISchemas(t *testing.T) *SchemaLoader {
	t.Helper()
	loader := NewSchemaLoader()
	require.NoError(t, loader.LoadSchemasFromOpenAPI(api.OpenAPISpec))
	return loader
}

func TestSchemaLoader_LoadsEmbeddedDocument(t *testing.T) {
	loader := loadAPISchemas(t)

	for _, name := range []string{"CultureInput", "CulturePatch", "QuizEntryInput", "QuizEntryPatch", "MediaItemInput", "ChatRequest"} {
		assert.Contains(t, loader.SchemaNames(), name)
	}

	assert.Equal(t, "CultureInput", loader.RequestSchemaFor("POST", "/api/cultures"))
	assert.Equal(t, "CulturePatch", loader.RequestSchemaFor("put", "/api/cultures/:slug"))
	assert.Equal(t, "ChatRequest", loader.RequestSchemaFor("POST", "/api/chat/:slug"))
	assert.Equal(t, "QuizEntryPatch", loader.RequestSchemaFor("PUT", "/api/quiz/:id"))
	assert.Empty(t, loader.RequestSchemaFor("GET", "/api/cultures"))
	assert.Empty(t, loader.RequestSchemaFor("DELETE", "/api/media/:id"))
}

func TestSchemaLoader_ValidateJSON(t *testing.T) {
	loader := loadAPISchemas(t)

	tests := []struct {
		name   string
		schema string
		body   string
		code   contextutils.ErrorCode
	}{
		{name: "valid culture", schema: "CultureInput", body: `{"name":"Māori","slug":"maori","region":"Oceania","population":775836}`},
		{name: "nullable fields accept null", schema: "CultureInput", body: `{"name":"Sami","slug":"sami","region":null,"gallery":null}`},
		{name: "missing slug", schema: "CultureInput", body: `{"name":"Sami"}`, code: contextutils.ErrorCodeValidationFailed},
		{name: "bad slug", schema: "CultureInput", body: `{"name":"Sami","slug":"Sami People"}`, code: contextutils.ErrorCodeValidationFailed},
		{name: "latitude out of range", schema: "CulturePatch", body: `{"latitude":91}`, code: contextutils.ErrorCodeValidationFailed},
		{name: "gallery image without url", schema: "CulturePatch", body: `{"gallery":[{"caption":"x"}]}`, code: contextutils.ErrorCodeValidationFailed},
		{name: "media type", schema: "MediaItemInput", body: `{"type":"image","url":"https://example.org/a.png"}`, code: contextutils.ErrorCodeValidationFailed},
		{name: "chat question", schema: "ChatRequest", body: `{"question":""}`, code: contextutils.ErrorCodeValidationFailed},
		{name: "not json", schema: "ChatRequest", body: `{"question":`, code: contextutils.ErrorCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := loader.ValidateJSON([]byte(tt.body), tt.schema)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.code, contextutils.GetErrorCode(err))
		})
	}

	assert.Error(t, loader.ValidateJSON([]byte(`{}`), "Unknown"))
}

func TestSchemaLoader_RejectsBrokenDocuments(t *testing.T) {
	assert.Error(t, NewSchemaLoader().LoadSchemasFromOpenAPI([]byte("openapi: [")))
	assert.Error(t, NewSchemaLoader().LoadSchemasFromOpenAPI([]byte("openapi: 3.0.3\npaths: {}\n")))
}

func TestGinPath(t *testing.T) {
	assert.Equal(t, "/api/cultures/:slug/quiz", ginPath("/api/cultures/{slug}/quiz"))
	assert.Equal(t, "/api/map", ginPath("/api/map"))
}

func TestRequestValidationMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	loader := loadAPISchemas(t)

	router := gin.New()
	router.Use(RequestValidationMiddleware(loader, observability.NewNopLogger()))
	router.POST("/api/chat/:slug", func(c *gin.Context) {
		var req struct {
			Question string `json:"question"`
		}
		require.NoError(t, c.ShouldBindJSON(&req))
		c.JSON(http.StatusOK, gin.H{"answer": req.Question})
	})
	router.DELETE("/api/media/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/chat/maori", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := post(`{"question":"Kia ora?"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"answer":"Kia ora?"}`, w.Body.String())

	w = post(`{"prompt":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "question")

	assert.Equal(t, http.StatusBadRequest, post("").Code)

	req := httptest.NewRequest(http.MethodDelete, "/api/media/3", nil)
	dw := httptest.NewRecorder()
	router.ServeHTTP(dw, req)
	assert.Equal(t, http.StatusNoContent, dw.Code)
}
