package story

import (
	"embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var moduleFS embed.FS

// DefaultMaxPathLength is the completion-percentage denominator used when a
// story file does not author its own. Tuned to the longest intended route
// through the bundled stories.
const DefaultMaxPathLength = 8

// DefaultEndingLabel is reported for any terminal node a story's endings
// table does not list.
const DefaultEndingLabel = "Story Complete"

// ScoringMode selects how a finished run is scored. It is resolved once at
// load time from the authored data: a graph carrying essence deltas is
// scored from the accumulated vector, anything else from the decision text.
type ScoringMode int

const (
	ScoreByKeywords ScoringMode = iota
	ScoreByEssence
)

func (m ScoringMode) String() string {
	if m == ScoreByEssence {
		return "essence"
	}
	return "keywords"
}

// Module is one bundled story: its graph plus the authored metadata the
// report layer needs (ending labels, path-length tuning).
type Module struct {
	ID            string            `yaml:"id"`
	Title         string            `yaml:"title"`
	MaxPathLength int               `yaml:"maxPathLength,omitempty"`
	Endings       map[string]string `yaml:"endings,omitempty"`
	Graph         Graph             `yaml:",inline"`

	Scoring ScoringMode `yaml:"-"`
}

// EndingLabel classifies the terminal node a run ended on.
func (m *Module) EndingLabel(nodeKey string) string {
	if label, ok := m.Endings[nodeKey]; ok {
		return label
	}
	return DefaultEndingLabel
}

var modules = mustLoadModules()

// Load resolves a bundled story module by ID.
func Load(id string) (*Module, error) {
	m, ok := modules[id]
	if !ok {
		return nil, fmt.Errorf("unknown story module %q", id)
	}
	return m, nil
}

// Modules lists the bundled story modules in ID order.
func Modules() []*Module {
	out := make([]*Module, 0, len(modules))
	for _, m := range modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func mustLoadModules() map[string]*Module {
	entries, err := moduleFS.ReadDir("data")
	if err != nil {
		panic(fmt.Sprintf("story: read embedded data: %v", err))
	}

	loaded := make(map[string]*Module, len(entries))
	for _, entry := range entries {
		data, err := moduleFS.ReadFile("data/" + entry.Name())
		if err != nil {
			panic(fmt.Sprintf("story: read %s: %v", entry.Name(), err))
		}
		m, err := Parse(data)
		if err != nil {
			panic(fmt.Sprintf("story: %s: %v", entry.Name(), err))
		}
		loaded[m.ID] = m
	}
	return loaded
}

// Parse decodes and validates one story module document.
func Parse(data []byte) (*Module, error) {
	var m Module
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode story module: %w", err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("story module has no id")
	}
	if m.MaxPathLength <= 0 {
		m.MaxPathLength = DefaultMaxPathLength
	}

	if findings := Validate(&m.Graph); !Valid(findings) {
		for _, f := range findings {
			if f.Severity == SeverityError {
				return nil, fmt.Errorf("story module %q: %w", m.ID, f)
			}
		}
	}

	m.Scoring = ScoreByKeywords
	for _, node := range m.Graph.Nodes {
		for _, choice := range node.Choices {
			if len(choice.EssenceChange) > 0 {
				m.Scoring = ScoreByEssence
			}
		}
	}
	return &m, nil
}
