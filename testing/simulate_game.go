// Command simulate plays every bundled story module with a seeded random
// walker and prints the resulting reports. Useful for eyeballing scoring and
// ending coverage without sitting through the TUI.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/tatianab/cosmic-tales/internal/engine"
	"github.com/tatianab/cosmic-tales/internal/report"
	"github.com/tatianab/cosmic-tales/internal/story"
)

const maxSteps = 100

func main() {
	seed := flag.Int64("seed", 1, "random seed for the walker")
	runs := flag.Int("runs", 3, "playthroughs per story module")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	ctrl := engine.New()

	for _, m := range story.Modules() {
		fmt.Printf("=== %s (%s, %s scoring) ===\n", m.Title, m.ID, m.Scoring)
		for i := 0; i < *runs; i++ {
			rep, err := playOnce(ctrl, m, rng)
			if err != nil {
				log.Fatalf("simulate %s: %v", m.ID, err)
			}
			fmt.Printf("run %d: ended at %q (%s) after %d decisions, "+
				"risk=%d diplomacy=%d exploration=%d, completion %d%%\n",
				i+1, rep.EndingKey, rep.EndingLabel, rep.DecisionCount,
				rep.Scores.Risk, rep.Scores.Diplomacy, rep.Scores.Exploration,
				rep.CompletionPercent)
		}
		fmt.Println()
	}
}

func playOnce(ctrl *engine.Controller, m *story.Module, rng *rand.Rand) (report.Report, error) {
	run, err := ctrl.StartRun(m)
	if err != nil {
		return report.Report{}, err
	}

	for steps := 0; !engine.IsEnded(run); steps++ {
		if steps >= maxSteps {
			return report.Report{}, fmt.Errorf("no ending reached after %d steps", maxSteps)
		}
		node, err := ctrl.CurrentNode(m, run)
		if err != nil {
			return report.Report{}, err
		}
		if err := ctrl.ApplyChoice(m, run, rng.Intn(len(node.Choices))); err != nil {
			return report.Report{}, err
		}
	}
	return report.Compute(m, run), nil
}
