// Package stats keeps a player profile across runs: chapters completed,
// average completion time, and a per-trait running average of essence. It
// consumes finished reports from the engine surface; nothing here feeds back
// into a run's own scoring, which stays strictly additive within one run.
package stats

import (
	"time"

	"github.com/tatianab/cosmic-tales/internal/report"
)

// Profile aggregates a player's play history.
type Profile struct {
	Name                  string             `yaml:"name"`
	ChaptersCompleted     int                `yaml:"chapters_completed"`
	StoriesStarted        int                `yaml:"stories_started"`
	AverageCompletionTime int                `yaml:"average_completion_time"` // seconds
	Essence               map[string]float64 `yaml:"essence,omitempty"`
	LastPlayed            *LastPlayed        `yaml:"last_played,omitempty"`
}

// LastPlayed marks the most recent activity.
type LastPlayed struct {
	Story    string    `yaml:"story"`
	Location string    `yaml:"location"`
	At       time.Time `yaml:"at"`
}

// NewProfile returns an empty profile for the named player.
func NewProfile(name string) *Profile {
	return &Profile{Name: name, Essence: map[string]float64{}}
}

// RecordStart notes that a story was started.
func (p *Profile) RecordStart(storyID, location string, at time.Time) {
	p.StoriesStarted++
	p.LastPlayed = &LastPlayed{Story: storyID, Location: location, At: at}
}

// RecordCompletion folds a finished run's report into the profile. The
// completion-time and per-trait essence aggregates are running averages
// across completed chapters, distinct from the additive accumulation inside
// a single run.
func (p *Profile) RecordCompletion(rep report.Report, at time.Time) {
	prior := p.ChaptersCompleted
	p.ChaptersCompleted++

	total := p.AverageCompletionTime*prior + rep.ElapsedSeconds
	p.AverageCompletionTime = (total + p.ChaptersCompleted/2) / p.ChaptersCompleted

	if len(rep.Essence) > 0 {
		if p.Essence == nil {
			p.Essence = map[string]float64{}
		}
		chapters := prior
		if chapters == 0 {
			chapters = 1
		}
		for trait, v := range rep.Essence {
			cur := p.Essence[trait]
			p.Essence[trait] = (cur*float64(chapters) + float64(v)) / float64(chapters+1)
		}
	}

	p.LastPlayed = &LastPlayed{Story: rep.Story, Location: "completed", At: at}
}
