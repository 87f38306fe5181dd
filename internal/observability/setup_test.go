package observability

import (
	"testing"

	"culturology/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupObservability_NoneEnabled(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		ServiceName: "test-service",
		Protocol:    "grpc",
		Endpoint:    "localhost:4317",
		Insecure:    true,
	}
	tp, mp, logger, err := SetupObservability(cfg, "culturology-test")
	require.NoError(t, err)
	assert.Nil(t, tp)
	assert.Nil(t, mp)
	require.NotNil(t, logger)
	assert.Equal(t, "culturology-test", cfg.ServiceName)
}

func TestSetupObservability_UnsupportedProtocol(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		EnableMetrics: true,
		Protocol:      "carrier-pigeon",
	}
	_, mp, _, err := SetupObservability(cfg, "test-service")
	require.Error(t, err)
	assert.Nil(t, mp)
}
