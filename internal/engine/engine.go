// Package engine drives a single playthrough of a story module: it owns the
// run state, applies choices, accumulates essence, and decides termination.
// It performs no I/O and no logging; the wall clock is its only
// environmental read, injected so tests can supply fixed times.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/tatianab/cosmic-tales/internal/story"
)

var (
	// ErrInvalidGraph means the start key did not resolve to a node.
	ErrInvalidGraph = errors.New("invalid story graph")
	// ErrRunEnded means a choice was applied to a finished run.
	ErrRunEnded = errors.New("run already ended")
	// ErrChoiceOutOfRange means the choice index does not select one of the
	// current node's choices.
	ErrChoiceOutOfRange = errors.New("choice index out of range")
	// ErrDanglingTarget means the chosen choice points at a node that does
	// not exist. Validated graphs never trigger this.
	ErrDanglingTarget = errors.New("choice target does not resolve")
	// ErrUnknownNode means the run's current key no longer resolves. Only
	// possible if a caller corrupts the run directly.
	ErrUnknownNode = errors.New("current node does not resolve")
)

// Decision records one applied choice in chronological order.
type Decision struct {
	From       string `yaml:"from" json:"from"`
	To         string `yaml:"to" json:"to"`
	ChoiceText string `yaml:"choice" json:"choiceText"`
}

// String renders the decision for display. Presentation only; the structured
// fields are the record.
func (d Decision) String() string {
	return fmt.Sprintf("%s → %s: %s", d.From, d.To, d.ChoiceText)
}

// Run is the mutable state of one playthrough. Controller methods mutate a
// Run in place; callers must not share one Run between playthroughs or
// goroutines.
type Run struct {
	Story      string
	CurrentKey string
	Decisions  []Decision
	Essence    story.Essence
	StartedAt  time.Time
	EndedAt    time.Time
	Ended      bool
}

// ElapsedSeconds is the whole seconds between start and end of a finished
// run, and zero for a run still in progress.
func (r *Run) ElapsedSeconds() int {
	if !r.Ended {
		return 0
	}
	return int(r.EndedAt.Sub(r.StartedAt) / time.Second)
}

// Controller walks a story graph one choice at a time.
type Controller struct {
	now func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock used for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New returns a Controller using the real wall clock unless overridden.
func New(opts ...Option) *Controller {
	c := &Controller{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartRun begins a fresh playthrough at the module's start node.
func (c *Controller) StartRun(m *story.Module) (*Run, error) {
	return c.StartRunAt(m, m.Graph.Start)
}

// StartRunAt begins a fresh playthrough at an explicit node key.
func (c *Controller) StartRunAt(m *story.Module, startKey string) (*Run, error) {
	if _, ok := m.Graph.Nodes[startKey]; !ok {
		return nil, fmt.Errorf("%w: start key %q not in module %q", ErrInvalidGraph, startKey, m.ID)
	}
	return &Run{
		Story:      m.ID,
		CurrentKey: startKey,
		Essence:    story.NewEssence(),
		StartedAt:  c.now(),
	}, nil
}

// CurrentNode resolves the run's current node in the module's graph.
func (c *Controller) CurrentNode(m *story.Module, r *Run) (story.Node, error) {
	node, ok := m.Graph.Nodes[r.CurrentKey]
	if !ok {
		return story.Node{}, fmt.Errorf("%w: %q", ErrUnknownNode, r.CurrentKey)
	}
	return node, nil
}

// ApplyChoice takes the indexed choice at the current node: it records the
// decision, folds the choice's essence delta into the run, and moves the
// pointer. If the new node is terminal the run ends and EndedAt is set. The
// state change completes before returning; any transition animation or
// delay belongs to the caller.
func (c *Controller) ApplyChoice(m *story.Module, r *Run, choiceIndex int) error {
	if r.Ended {
		return ErrRunEnded
	}
	node, err := c.CurrentNode(m, r)
	if err != nil {
		return err
	}
	if choiceIndex < 0 || choiceIndex >= len(node.Choices) {
		return fmt.Errorf("%w: %d of %d at %q", ErrChoiceOutOfRange, choiceIndex, len(node.Choices), r.CurrentKey)
	}

	choice := node.Choices[choiceIndex]
	next, ok := m.Graph.Nodes[choice.Target]
	if !ok {
		return fmt.Errorf("%w: %q to %q", ErrDanglingTarget, r.CurrentKey, choice.Target)
	}

	r.Decisions = append(r.Decisions, Decision{
		From:       r.CurrentKey,
		To:         choice.Target,
		ChoiceText: choice.Text,
	})
	r.Essence.Add(choice.EssenceChange)
	r.CurrentKey = choice.Target

	if next.Terminal() {
		r.Ended = true
		r.EndedAt = c.now()
	}
	return nil
}

// Restart discards the run and starts over at the module's start node. The
// returned Run has empty history and all-zero essence; the old Run is left
// untouched and should be dropped.
func (c *Controller) Restart(m *story.Module) (*Run, error) {
	return c.StartRun(m)
}

// IsEnded reports whether the run has reached a terminal node.
func IsEnded(r *Run) bool {
	return r.Ended
}
