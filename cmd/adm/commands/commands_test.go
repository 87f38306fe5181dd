package commands

import (
	"os"
	"path/filepath"
	"testing"

	contextutils "culturology/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAdminKey(t *testing.T) {
	hash, err := HashAdminKey([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}

func TestReadCultureInputs(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "cultures.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[
  {"name": "Māori", "slug": "maori", "region": "Oceania", "population": 775836},
  {"name": "Sámi", "slug": "sami", "gallery": [{"url": "https://example.org/sami.jpg"}]}
]`), 0o600))

	inputs, err := readCultureInputs(jsonPath)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, "maori", inputs[0].Slug)
	require.NotNil(t, inputs[0].Population)
	assert.Equal(t, int64(775836), *inputs[0].Population)
	assert.Len(t, inputs[1].Gallery, 1)

	yamlPath := filepath.Join(dir, "cultures.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("- name: Ainu\n  slug: ainu\n  region: Asia\n"), 0o600))
	inputs, err = readCultureInputs(yamlPath)
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, "Asia", *inputs[0].Region)

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`{"name": "not a list"}`), 0o600))
	_, err = readCultureInputs(badPath)
	assert.True(t, contextutils.GetErrorCode(err) == contextutils.ErrorCodeInvalidFormat)
}
