package story

// Graph is the authored directed graph of narrative nodes for one story
// module. It is read-only after loading; a playthrough never mutates it.
type Graph struct {
	Start string          `yaml:"start"`
	Nodes map[string]Node `yaml:"nodes"`
}

// Node is a single narrative beat. A node with no choices is terminal:
// reaching it ends the run.
type Node struct {
	Text        string            `yaml:"text"`
	Choices     []Choice          `yaml:"choices"`
	VisualState map[string]string `yaml:"visual,omitempty"` // presentation-only, never read by the engine
}

// Terminal reports whether the node ends a run.
func (n Node) Terminal() bool {
	return len(n.Choices) == 0
}

// Choice is a labeled edge to another node, optionally carrying an essence
// delta applied when the choice is taken.
type Choice struct {
	Text          string         `yaml:"text"`
	Target        string         `yaml:"target"`
	EssenceChange map[string]int `yaml:"essence,omitempty"`
	Description   string         `yaml:"description,omitempty"`
}

// CanonicalTraits are the trait keys every run starts with at zero. Authored
// essence deltas may introduce additional keys; those default to zero on
// first touch.
var CanonicalTraits = []string{
	"harmony", "chaos", "energy", "diplomacy", "neutrality",
	"curiosity", "exploration", "greed", "knowledge", "progress",
	"risk", "strength", "isolation", "commerce", "caution",
}

// Essence is the accumulated per-trait totals for a single playthrough.
type Essence map[string]int

// NewEssence returns an essence vector with every canonical trait at zero.
func NewEssence() Essence {
	e := make(Essence, len(CanonicalTraits))
	for _, t := range CanonicalTraits {
		e[t] = 0
	}
	return e
}

// Add folds a choice's essence delta into the vector. Keys absent from the
// vector default to zero before the delta is applied.
func (e Essence) Add(delta map[string]int) {
	for trait, v := range delta {
		e[trait] += v
	}
}

// Zero reports whether every entry in the vector is zero. A run whose
// essence never moved off zero is scored from its decision text instead.
func (e Essence) Zero() bool {
	for _, v := range e {
		if v != 0 {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the vector.
func (e Essence) Clone() Essence {
	out := make(Essence, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
