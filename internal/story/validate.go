package story

import "fmt"

// Severity of a validation finding. Errors make the graph unplayable;
// warnings flag suspicious authoring that the engine can still run.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// ValidationError describes one problem found in an authored graph.
type ValidationError struct {
	Severity Severity
	NodeKey  string // offending node, empty for graph-level findings
	Message  string
}

func (v ValidationError) Error() string {
	if v.NodeKey == "" {
		return fmt.Sprintf("%s: %s", v.Severity, v.Message)
	}
	return fmt.Sprintf("%s: node %q: %s", v.Severity, v.NodeKey, v.Message)
}

// Validate checks an authored graph: the start key must resolve, every
// choice target must resolve, and at least one terminal node should be
// reachable from the start (warning only, since some endings are
// intentionally gated behind branches). Traversal is iterative and tracks a
// visited set, so cyclic graphs are handled without recursion.
func Validate(g *Graph) []ValidationError {
	var findings []ValidationError

	if _, ok := g.Nodes[g.Start]; !ok {
		findings = append(findings, ValidationError{
			Severity: SeverityError,
			Message:  fmt.Sprintf("start key %q does not resolve to a node", g.Start),
		})
	}

	for key, node := range g.Nodes {
		for i, choice := range node.Choices {
			if _, ok := g.Nodes[choice.Target]; !ok {
				findings = append(findings, ValidationError{
					Severity: SeverityError,
					NodeKey:  key,
					Message:  fmt.Sprintf("choice %d (%q) targets unknown node %q", i, choice.Text, choice.Target),
				})
			}
		}
	}

	if _, ok := g.Nodes[g.Start]; ok && !terminalReachable(g) {
		findings = append(findings, ValidationError{
			Severity: SeverityWarning,
			NodeKey:  g.Start,
			Message:  "no terminal node is reachable from the start; runs can never end",
		})
	}

	return findings
}

// Valid reports whether the findings contain no error-severity entries.
func Valid(findings []ValidationError) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return false
		}
	}
	return true
}

// terminalReachable walks breadth-first from the start key looking for a
// node with no choices. Bounded by the node count via the visited set.
func terminalReachable(g *Graph) bool {
	visited := make(map[string]bool, len(g.Nodes))
	queue := []string{g.Start}

	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		if visited[key] {
			continue
		}
		visited[key] = true

		node, ok := g.Nodes[key]
		if !ok {
			continue
		}
		if node.Terminal() {
			return true
		}
		for _, choice := range node.Choices {
			if !visited[choice.Target] {
				queue = append(queue, choice.Target)
			}
		}
	}
	return false
}
