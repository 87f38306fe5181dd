package services

import (
	"testing"

	contextutils "culturology/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFallbackCatalog(t *testing.T) {
	catalog, err := DefaultFallbackCatalog()
	require.NoError(t, err)
	assert.Equal(t, 8, catalog.Len())
	assert.GreaterOrEqual(t, catalog.Len(), QuizLength)
}

func TestLoadFallbackCatalog_Invalid(t *testing.T) {
	fiveWith := func(last string) string {
		return `entries:
  - {template: "A {{.Name}}", field: region}
  - {template: "B {{.Name}}", field: location}
  - {template: "C {{.Name}}", field: language}
  - {template: "D {{.Name}}", field: about}
` + last
	}

	tests := []struct {
		name string
		data string
	}{
		{name: "too few", data: fiveWith("")},
		{name: "duplicate pair", data: fiveWith(`  - {template: "A {{.Name}}", field: region}`)},
		{name: "unknown field", data: fiveWith(`  - {template: "E {{.Name}}", field: cuisine}`)},
		{name: "empty template", data: fiveWith(`  - {template: "", field: lifestyle}`)},
		{name: "bad template", data: fiveWith(`  - {template: "E {{.Name", field: lifestyle}`)},
		{name: "not yaml", data: "entries: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFallbackCatalog([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, contextutils.IsError(err, contextutils.ErrConfigurationMissing))
			var appErr *contextutils.AppError
			require.True(t, contextutils.AsError(err, &appErr))
			assert.Equal(t, contextutils.SeverityFatal, appErr.Severity)
		})
	}

	_, err := LoadFallbackCatalog([]byte(fiveWith(`  - {template: "E {{.Name}}", field: lifestyle}`)))
	assert.NoError(t, err)
}

func TestFallbackCatalog_BuildCopiesFieldsVerbatim(t *testing.T) {
	catalog, err := DefaultFallbackCatalog()
	require.NoError(t, err)

	picks := make([]int, 0, catalog.Len())
	for i := range catalog.Len() {
		picks = append(picks, i)
	}

	items, err := catalog.Build(maoriCulture().PromptFields(), picks)
	require.NoError(t, err)

	byQuestion := map[string]string{}
	for i, item := range items {
		assert.Equal(t, i+1, item.ID)
		assert.Nil(t, item.Options)
		assert.Empty(t, item.Correct)
		require.NotNil(t, item.Answer)
		byQuestion[item.Question] = *item.Answer
	}

	assert.Equal(t, "Oceania", byQuestion["What region is the Māori culture from?"])
	answer, ok := byQuestion["Describe the typical lifestyle of the Māori people."]
	assert.True(t, ok)
	assert.Equal(t, "", answer)
	assert.Equal(t, "", byQuestion["Roughly how many Māori people are there today?"], "absent population is empty")
}

func TestFallbackSampler(t *testing.T) {
	a := NewFallbackSampler(42)
	b := NewFallbackSampler(42)

	for range 20 {
		pa := a.Sample(8, QuizLength)
		pb := b.Sample(8, QuizLength)
		assert.Equal(t, pa, pb, "same seed, same draws")

		seen := map[int]bool{}
		for _, idx := range pa {
			assert.False(t, seen[idx], "index %d repeated", idx)
			assert.GreaterOrEqual(t, idx, 0)
			assert.Less(t, idx, 8)
			seen[idx] = true
		}
		assert.Len(t, pa, QuizLength)
	}
}
