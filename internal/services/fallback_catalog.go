package services

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"text/template"
	"time"

	"culturology/internal/models"
	contextutils "culturology/internal/utils"

	"gopkg.in/yaml.v3"
)

//go:embed fallback_catalog.yaml
var defaultFallbackCatalog []byte

var knownFallbackFields = map[string]bool{
	"name": true, "region": true, "location": true, "population": true,
	"language": true, "about": true, "traditions": true, "lifestyle": true,
}

// FallbackEntry pairs a question template with the culture field that answers it
type FallbackEntry struct {
	Template string `yaml:"template"`
	Field    string `yaml:"field"`

	tmpl *template.Template
}

// FallbackCatalog is the fixed question set used when the provider fails
type FallbackCatalog struct {
	entries []FallbackEntry
}

type fallbackCatalogFile struct {
	Entries []FallbackEntry `yaml:"entries"`
}

// DefaultFallbackCatalog loads the embedded catalog
func DefaultFallbackCatalog() (*FallbackCatalog, error) {
	return LoadFallbackCatalog(defaultFallbackCatalog)
}

// LoadFallbackCatalog parses a catalog. It needs at least QuizLength entries,
// no repeated (template, field) pair, and only known field names.
func LoadFallbackCatalog(data []byte) (*FallbackCatalog, error) {
	var file fallbackCatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, catalogError("failed to parse fallback catalog: %v", err)
	}

	if len(file.Entries) < QuizLength {
		return nil, catalogError("fallback catalog has %d entries, need at least %d", len(file.Entries), QuizLength)
	}

	seen := make(map[[2]string]bool, len(file.Entries))
	for i := range file.Entries {
		e := &file.Entries[i]
		if strings.TrimSpace(e.Template) == "" {
			return nil, catalogError("fallback entry %d has an empty template", i)
		}
		if !knownFallbackFields[e.Field] {
			return nil, catalogError("fallback entry %d uses unknown field %q", i, e.Field)
		}
		key := [2]string{e.Template, e.Field}
		if seen[key] {
			return nil, catalogError("fallback entry %d repeats (%q, %s)", i, e.Template, e.Field)
		}
		seen[key] = true

		tmpl, err := template.New(fmt.Sprintf("fallback-%d", i)).Option("missingkey=error").Parse(e.Template)
		if err != nil {
			return nil, catalogError("fallback entry %d has a bad template: %v", i, err)
		}
		e.tmpl = tmpl
	}

	return &FallbackCatalog{entries: file.Entries}, nil
}

func catalogError(format string, args ...interface{}) error {
	return contextutils.NewAppError(contextutils.ErrorCodeConfigurationMissing, contextutils.SeverityFatal,
		"Invalid fallback catalog", fmt.Sprintf(format, args...))
}

// Len returns the number of entries
func (c *FallbackCatalog) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the catalog entries
func (c *FallbackCatalog) Entries() []FallbackEntry {
	out := make([]FallbackEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Build renders the picked entries in order. Item ids follow the pick order starting at 1.
func (c *FallbackCatalog) Build(fields models.PromptFields, picks []int) ([]models.QuizItem, error) {
	items := make([]models.QuizItem, 0, len(picks))
	for i, idx := range picks {
		if idx < 0 || idx >= len(c.entries) {
			return nil, contextutils.ErrorWithContextf("fallback pick %d out of range", idx)
		}
		e := c.entries[idx]

		var buf strings.Builder
		if err := e.tmpl.Execute(&buf, struct{ Name string }{Name: fields.Name}); err != nil {
			return nil, contextutils.WrapErrorf(err, "failed to render fallback question %d", idx)
		}

		answer, _ := fields.Field(e.Field)
		items = append(items, models.QuizItem{
			ID:       i + 1,
			Question: buf.String(),
			Answer:   &answer,
		})
	}
	return items, nil
}

// FallbackSampler draws distinct catalog indexes from a seeded source
type FallbackSampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFallbackSampler creates a sampler. A zero seed uses the clock.
func NewFallbackSampler(seed uint64) *FallbackSampler {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &FallbackSampler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Sample returns k distinct indexes in [0, n) in draw order.
func (s *FallbackSampler) Sample(n, k int) []int {
	s.mu.Lock()
	perm := s.rng.Perm(n)
	s.mu.Unlock()
	return perm[:k]
}
