package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/tatianab/cosmic-tales/internal/story"
)

// fakeClock hands out times advancing by a fixed step per call.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	t := c.t
	c.t = c.t.Add(c.step)
	return t
}

func testModule() *story.Module {
	return &story.Module{
		ID:            "test",
		Title:         "Test",
		MaxPathLength: 8,
		Graph: story.Graph{
			Start: "start",
			Nodes: map[string]story.Node{
				"start": {Text: "the beginning", Choices: []story.Choice{
					{Text: "Explore", Target: "explore", EssenceChange: map[string]int{"chaos": 1, "energy": 10}},
					{Text: "Wait", Target: "wait"},
				}},
				"explore": {Text: "out there", Choices: []story.Choice{
					{Text: "Go home", Target: "end", EssenceChange: map[string]int{"chaos": 2}},
				}},
				"wait": {Text: "nothing happens", Choices: []story.Choice{
					{Text: "Keep waiting", Target: "wait"},
					{Text: "Give up", Target: "end"},
				}},
				"end": {Text: "the end"},
			},
		},
		Scoring: story.ScoreByEssence,
	}
}

func TestStartRun(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: start, step: time.Second}
	ctrl := New(WithClock(clock.now))

	run, err := ctrl.StartRun(testModule())
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if run.CurrentKey != "start" {
		t.Errorf("CurrentKey = %q, want start", run.CurrentKey)
	}
	if IsEnded(run) {
		t.Error("fresh run should not be ended")
	}
	if len(run.Decisions) != 0 {
		t.Errorf("fresh run has %d decisions", len(run.Decisions))
	}
	if !run.Essence.Zero() {
		t.Errorf("fresh run essence = %v, want all zero", run.Essence)
	}
	if !run.StartedAt.Equal(start) {
		t.Errorf("StartedAt = %v, want %v", run.StartedAt, start)
	}
}

func TestStartRunBadStartKey(t *testing.T) {
	m := testModule()
	m.Graph.Start = "missing"
	if _, err := New().StartRun(m); !errors.Is(err, ErrInvalidGraph) {
		t.Fatalf("err = %v, want ErrInvalidGraph", err)
	}
}

func TestApplyChoiceRecordsDecisionAndEssence(t *testing.T) {
	m := testModule()
	ctrl := New()
	run, _ := ctrl.StartRun(m)

	if err := ctrl.ApplyChoice(m, run, 0); err != nil {
		t.Fatalf("ApplyChoice: %v", err)
	}
	if run.CurrentKey != "explore" {
		t.Errorf("CurrentKey = %q, want explore", run.CurrentKey)
	}
	if len(run.Decisions) != 1 {
		t.Fatalf("decisions = %d, want 1", len(run.Decisions))
	}
	d := run.Decisions[0]
	if d.From != "start" || d.To != "explore" || d.ChoiceText != "Explore" {
		t.Errorf("decision = %+v", d)
	}
	if run.Essence["chaos"] != 1 || run.Essence["energy"] != 10 {
		t.Errorf("essence = %v, want chaos=1 energy=10", run.Essence)
	}
	for _, trait := range story.CanonicalTraits {
		if trait == "chaos" || trait == "energy" {
			continue
		}
		if run.Essence[trait] != 0 {
			t.Errorf("trait %q = %d, want 0", trait, run.Essence[trait])
		}
	}
}

func TestEssenceAccumulatesAcrossRun(t *testing.T) {
	m := testModule()
	ctrl := New()
	run, _ := ctrl.StartRun(m)

	if err := ctrl.ApplyChoice(m, run, 0); err != nil {
		t.Fatalf("choice 1: %v", err)
	}
	if err := ctrl.ApplyChoice(m, run, 0); err != nil {
		t.Fatalf("choice 2: %v", err)
	}
	if run.Essence["chaos"] != 3 {
		t.Errorf("chaos = %d, want 3 (additive accumulation)", run.Essence["chaos"])
	}
}

func TestTerminationExactness(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: start, step: 95 * time.Second}
	m := testModule()
	ctrl := New(WithClock(clock.now))
	run, _ := ctrl.StartRun(m)

	if IsEnded(run) {
		t.Fatal("ended immediately after StartRun")
	}
	if err := ctrl.ApplyChoice(m, run, 0); err != nil {
		t.Fatalf("choice 1: %v", err)
	}
	if IsEnded(run) {
		t.Fatal("ended before reaching a terminal node")
	}
	if err := ctrl.ApplyChoice(m, run, 0); err != nil {
		t.Fatalf("choice 2: %v", err)
	}
	if !IsEnded(run) {
		t.Fatal("not ended after entering a terminal node")
	}
	if run.ElapsedSeconds() != 95 {
		t.Errorf("ElapsedSeconds = %d, want 95", run.ElapsedSeconds())
	}

	// Once ended, further choices fail and the run stays ended.
	if err := ctrl.ApplyChoice(m, run, 0); !errors.Is(err, ErrRunEnded) {
		t.Errorf("err = %v, want ErrRunEnded", err)
	}
	if !IsEnded(run) {
		t.Error("run flipped back to in-progress")
	}
}

func TestChoiceIndexOutOfRange(t *testing.T) {
	m := testModule()
	ctrl := New()
	run, _ := ctrl.StartRun(m)

	for _, idx := range []int{-1, 2, 99} {
		if err := ctrl.ApplyChoice(m, run, idx); !errors.Is(err, ErrChoiceOutOfRange) {
			t.Errorf("index %d: err = %v, want ErrChoiceOutOfRange", idx, err)
		}
	}
	if len(run.Decisions) != 0 {
		t.Errorf("failed choices must not append decisions, got %d", len(run.Decisions))
	}
}

func TestDanglingTarget(t *testing.T) {
	m := testModule()
	node := m.Graph.Nodes["start"]
	node.Choices = append(node.Choices, story.Choice{Text: "Void", Target: "void"})
	m.Graph.Nodes["start"] = node

	ctrl := New()
	run, _ := ctrl.StartRun(m)
	if err := ctrl.ApplyChoice(m, run, 2); !errors.Is(err, ErrDanglingTarget) {
		t.Fatalf("err = %v, want ErrDanglingTarget", err)
	}
	if run.CurrentKey != "start" || len(run.Decisions) != 0 {
		t.Error("failed transition must leave the run untouched")
	}
}

func TestUnknownNode(t *testing.T) {
	m := testModule()
	ctrl := New()
	run, _ := ctrl.StartRun(m)
	run.CurrentKey = "corrupted"

	if _, err := ctrl.CurrentNode(m, run); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("CurrentNode err = %v, want ErrUnknownNode", err)
	}
	if err := ctrl.ApplyChoice(m, run, 0); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("ApplyChoice err = %v, want ErrUnknownNode", err)
	}
}

func TestRestartClearsAllRunState(t *testing.T) {
	m := testModule()
	ctrl := New()
	run, _ := ctrl.StartRun(m)
	if err := ctrl.ApplyChoice(m, run, 0); err != nil {
		t.Fatalf("ApplyChoice: %v", err)
	}

	fresh, err := ctrl.Restart(m)
	if err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if fresh.CurrentKey != m.Graph.Start {
		t.Errorf("CurrentKey = %q, want %q", fresh.CurrentKey, m.Graph.Start)
	}
	if len(fresh.Decisions) != 0 {
		t.Errorf("restarted run has %d decisions", len(fresh.Decisions))
	}
	if !fresh.Essence.Zero() {
		t.Errorf("restarted run essence = %v, want all zero", fresh.Essence)
	}
	if fresh.Ended {
		t.Error("restarted run is ended")
	}
}

func TestSelfLoopIsLegal(t *testing.T) {
	m := testModule()
	ctrl := New()
	run, _ := ctrl.StartRun(m)

	if err := ctrl.ApplyChoice(m, run, 1); err != nil { // start -> wait
		t.Fatalf("to wait: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := ctrl.ApplyChoice(m, run, 0); err != nil { // wait -> wait
			t.Fatalf("self-loop %d: %v", i, err)
		}
	}
	if IsEnded(run) {
		t.Error("self-looping run must not end")
	}
	if len(run.Decisions) != 6 {
		t.Errorf("decisions = %d, want 6", len(run.Decisions))
	}
}

func TestDecisionString(t *testing.T) {
	d := Decision{From: "start", To: "explore", ChoiceText: "Explore"}
	if got := d.String(); got != "start → explore: Explore" {
		t.Errorf("String() = %q", got)
	}
}
