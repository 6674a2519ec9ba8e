// Package report turns a finished run into trait scores, an ending label,
// and journey metrics. Every function is pure and total over well-formed
// runs: empty histories and empty essence vectors score at the neutral
// baseline instead of failing.
package report

import (
	"fmt"
	"strings"

	"github.com/tatianab/cosmic-tales/internal/engine"
	"github.com/tatianab/cosmic-tales/internal/story"
)

// Trait scores live on a 1-10 scale around a neutral baseline of 5.
const (
	scoreFloor    = 1
	scoreCeiling  = 10
	scoreBaseline = 5
)

// TraitScores are the derived personality scores for one run.
type TraitScores struct {
	Risk        int `json:"risk"`
	Diplomacy   int `json:"diplomacy"`
	Exploration int `json:"exploration"`
}

// TraitLabels are the qualitative readings of the scores.
type TraitLabels struct {
	Risk        string `json:"risk"`
	Diplomacy   string `json:"diplomacy"`
	Exploration string `json:"exploration"`
}

// Report is the end-of-run summary handed to the presentation layer.
type Report struct {
	Story             string            `json:"story"`
	EndingKey         string            `json:"endingKey"`
	EndingLabel       string            `json:"endingLabel"`
	ElapsedSeconds    int               `json:"elapsedSeconds"`
	DecisionCount     int               `json:"decisionCount"`
	CompletionPercent int               `json:"completionPercent"`
	Scores            TraitScores       `json:"traitScores"`
	Labels            TraitLabels       `json:"traitLabels"`
	Decisions         []engine.Decision `json:"decisionHistory"`
	Essence           story.Essence     `json:"essence,omitempty"`
}

// ElapsedDisplay formats the elapsed time as minutes and seconds.
func (r Report) ElapsedDisplay() string {
	return fmt.Sprintf("%dm %ds", r.ElapsedSeconds/60, r.ElapsedSeconds%60)
}

// Compute builds the report for a run of the given module. The scoring mode
// comes from the module, resolved when its data was loaded: modules authored
// with essence deltas are scored from the accumulated vector, the rest from
// keyword scans over the decision text.
func Compute(m *story.Module, r *engine.Run) Report {
	var scores TraitScores
	var ess story.Essence
	if m.Scoring == story.ScoreByEssence {
		scores = essenceScores(r.Essence)
		ess = r.Essence
	} else {
		scores = keywordScores(r.Decisions)
	}

	return Report{
		Story:             m.ID,
		EndingKey:         r.CurrentKey,
		EndingLabel:       m.EndingLabel(r.CurrentKey),
		ElapsedSeconds:    r.ElapsedSeconds(),
		DecisionCount:     len(r.Decisions),
		CompletionPercent: completionPercent(len(r.Decisions), m.MaxPathLength),
		Scores:            scores,
		Labels: TraitLabels{
			Risk:        riskLabel(scores.Risk),
			Diplomacy:   diplomacyLabel(scores.Diplomacy),
			Exploration: explorationLabel(scores.Exploration),
		},
		Decisions: r.Decisions,
		Essence:   ess,
	}
}

func essenceScores(e story.Essence) TraitScores {
	return TraitScores{
		Risk: clamp(scoreBaseline +
			(e["risk"] + e["chaos"]) -
			(e["caution"] + e["harmony"])),
		Diplomacy: clamp(scoreBaseline +
			(e["diplomacy"] + e["harmony"] + e["commerce"]) -
			(e["chaos"] + e["isolation"])),
		Exploration: clamp(scoreBaseline +
			(e["exploration"] + e["curiosity"] + e["knowledge"]) -
			e["caution"]),
	}
}

// Keyword lists for scoring stories without an essence system. Matching is
// case-insensitive substring search; each occurrence in a decision's choice
// text counts once.
var (
	riskPositive = []string{
		"brute force", "fight", "hack", "power", "challenge",
		"danger", "risky", "combat", "attack", "infiltrate",
	}
	riskNegative = []string{
		"careful", "caution", "stealth", "peace", "hide",
		"avoid", "escape", "safe", "diplomatic", "slow",
	}
	diplomacyPositive = []string{
		"peace", "talk", "ally", "friend", "cooperate",
		"negotiate", "help", "assist", "support", "trade",
	}
	diplomacyNegative = []string{
		"attack", "fight", "refuse", "reject", "destroy",
		"sabotage", "betray", "alone", "solo", "isolate",
	}
	explorationPositive = []string{
		"explore", "discover", "investigate", "search", "find",
		"seek", "learn", "journey", "venture", "curiosity",
	}
	explorationNegative = []string{
		"stay", "remain", "avoid", "hide", "back",
		"leave", "escape", "retreat", "ignore", "reject",
	}
)

func keywordScores(decisions []engine.Decision) TraitScores {
	risk, diplomacy, exploration := scoreBaseline, scoreBaseline, scoreBaseline
	for _, d := range decisions {
		text := strings.ToLower(d.ChoiceText)
		risk += matches(text, riskPositive) - matches(text, riskNegative)
		diplomacy += matches(text, diplomacyPositive) - matches(text, diplomacyNegative)
		exploration += matches(text, explorationPositive) - matches(text, explorationNegative)
	}
	return TraitScores{
		Risk:        clamp(risk),
		Diplomacy:   clamp(diplomacy),
		Exploration: clamp(exploration),
	}
}

func matches(text string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			n++
		}
	}
	return n
}

func clamp(v int) int {
	if v < scoreFloor {
		return scoreFloor
	}
	if v > scoreCeiling {
		return scoreCeiling
	}
	return v
}

func completionPercent(decisions, maxPathLength int) int {
	if maxPathLength <= 0 {
		maxPathLength = story.DefaultMaxPathLength
	}
	pct := int(float64(decisions)/float64(maxPathLength)*100 + 0.5)
	if pct > 100 {
		return 100
	}
	return pct
}

func riskLabel(score int) string {
	switch {
	case score >= 9:
		return "Extremely Bold"
	case score >= 7:
		return "Risk Taker"
	case score >= 5:
		return "Balanced"
	case score >= 3:
		return "Cautious"
	default:
		return "Very Conservative"
	}
}

func diplomacyLabel(score int) string {
	switch {
	case score >= 9:
		return "Natural Leader"
	case score >= 7:
		return "Diplomatic"
	case score >= 5:
		return "Reasonable"
	case score >= 3:
		return "Independent"
	default:
		return "Lone Wolf"
	}
}

func explorationLabel(score int) string {
	switch {
	case score >= 9:
		return "Pioneer"
	case score >= 7:
		return "Adventurous"
	case score >= 5:
		return "Curious"
	case score >= 3:
		return "Methodical"
	default:
		return "Hesitant"
	}
}
