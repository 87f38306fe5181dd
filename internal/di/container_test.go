package di

import (
	"context"
	"path/filepath"
	"testing"

	"culturology/internal/config"
	"culturology/internal/models"
	"culturology/internal/observability"
	"culturology/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// ServiceContainerTestSuite exercises the container against a temporary sqlite database
type ServiceContainerTestSuite struct {
	suite.Suite
	Container *ServiceContainer
}

func TestServiceContainerTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceContainerTestSuite))
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Database:    config.DatabaseConfig{URL: "sqlite://" + filepath.Join(t.TempDir(), "di.db")},
		AdminAPIKey: "admin",
		AI: config.AIConfig{
			BaseURL:                 "http://127.0.0.1:1",
			APIKey:                  "test",
			Model:                   "test-model",
			MaxTokens:               config.DefaultQuizMaxTokens,
			ChatMaxTokens:           config.DefaultChatMaxTokens,
			Temperature:             config.DefaultAITemperature,
			RequestTimeout:          config.TestTimeout,
			BreakerFailureThreshold: config.DefaultBreakerFailureThreshold,
			BreakerOpenTimeout:      config.AIBreakerOpenTimeout,
			FallbackSeed:            1,
		},
	}
}

func (s *ServiceContainerTestSuite) SetupTest() {
	s.Container = NewServiceContainer(testConfig(s.T()), observability.NewNopLogger(), sdkmetric.NewMeterProvider())
	require.NoError(s.T(), s.Container.Initialize(context.Background()))
}

func (s *ServiceContainerTestSuite) TearDownTest() {
	_ = s.Container.Shutdown(context.Background())
}

func (s *ServiceContainerTestSuite) TestTypedGetters() {
	_, err := s.Container.GetCultureService()
	s.NoError(err)
	_, err = s.Container.GetQuizEntryService()
	s.NoError(err)
	_, err = s.Container.GetMediaService()
	s.NoError(err)
	_, err = s.Container.GetAIClient()
	s.NoError(err)
	_, err = s.Container.GetQuizGenerator()
	s.NoError(err)
	_, err = s.Container.GetChatService()
	s.NoError(err)

	s.NotNil(s.Container.GetDatabase())
	s.NotNil(s.Container.GetSchemaLoader())
	s.Equal("CultureInput", s.Container.GetSchemaLoader().RequestSchemaFor("POST", "/api/cultures"))
}

func (s *ServiceContainerTestSuite) TestGetServiceAs() {
	_, err := s.Container.GetService("missing")
	s.Error(err)

	_, err = GetServiceAs[services.ChatServiceInterface](s.Container, ServiceCulture)
	s.Error(err, "culture service is not a chat service")
}

func (s *ServiceContainerTestSuite) TestQuizFallsBackWhenProviderIsDown() {
	ctx := context.Background()
	cultures, err := s.Container.GetCultureService()
	s.Require().NoError(err)

	region := "Oceania"
	_, err = cultures.CreateCulture(ctx, modelsMaori(region))
	s.Require().NoError(err)

	generator, err := s.Container.GetQuizGenerator()
	s.Require().NoError(err)

	result, err := generator.Generate(ctx, "maori")
	s.Require().NoError(err)
	s.Equal("fallback", string(result.Source))
	s.Len(result.Items, services.QuizLength)
}

func TestServiceContainer_InitializeFailsOnBadDatabase(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.URL = "mysql://nope"

	sc := NewServiceContainer(cfg, observability.NewNopLogger(), nil)
	err := sc.Initialize(context.Background())
	require.Error(t, err)
	assert.Nil(t, sc.GetDatabase())
}

func modelsMaori(region string) models.CultureInput {
	return models.CultureInput{Name: "Māori", Slug: "maori", Region: &region}
}
