package plan

import (
	"fmt"
	"sort"
)

// ValidationSeverity indicates whether a validation finding blocks the
// build or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks the build
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if plan-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationResult separates blocking errors from advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether the plan may be built.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs the structural checks on the plan. An empty slice means
// the plan is well formed. Validate never mutates the plan.
func Validate(p *Plan) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(p)...)
	errs = append(errs, validateReferences(p)...)
	errs = append(errs, validateNames(p)...)
	errs = append(errs, validateTargets(p)...)
	return errs
}

// ValidateAll runs the structural and parameter checks and separates
// errors from warnings.
func ValidateAll(p *Plan) ValidationResult {
	var result ValidationResult
	all := Validate(p)
	all = append(all, validateParameters(p)...)
	all = append(all, validateCoverage(p)...)
	for _, e := range all {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, e)
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

// sortedIDs returns the node IDs in declaration order so findings are
// reported deterministically.
func sortedIDs(p *Plan) []NodeID {
	ids := make([]NodeID, 0, len(p.Nodes))
	seen := make(map[NodeID]bool, len(p.Nodes))
	for _, id := range p.Steps {
		if _, ok := p.Nodes[id]; ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	var rest []NodeID
	for id := range p.Nodes {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(ids, rest...)
}

// validateDAG checks for cycles using DFS with 3-color marking.
func validateDAG(p *Plan) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}
		color[id] = gray
		node, ok := p.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}
		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, id := range sortedIDs(p) {
		if color[id] == white && visit(id) {
			break
		}
	}
	return errs
}

// validateReferences checks that every child and step reference exists.
func validateReferences(p *Plan) []ValidationError {
	var errs []ValidationError
	for _, id := range sortedIDs(p) {
		node := p.Nodes[id]
		for _, childID := range node.Children {
			if _, ok := p.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
	}
	for _, id := range p.Steps {
		if _, ok := p.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("step reference %s does not exist", id.Short()),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateNames checks that part names are unique and that every name index
// entry points to an existing part.
func validateNames(p *Plan) []ValidationError {
	var errs []ValidationError

	names := make([]string, 0, len(p.NameIndex))
	for name := range p.NameIndex {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		id := p.NameIndex[name]
		if _, ok := p.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	count := make(map[string]int)
	var order []string
	for _, id := range sortedIDs(p) {
		n := p.Nodes[id]
		if !n.Kind.IsPart() {
			continue
		}
		if n.Name == "" {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("%s part has no name", n.Kind),
				Severity: SeverityError,
			})
			continue
		}
		if count[n.Name] == 0 {
			order = append(order, n.Name)
		}
		count[n.Name]++
	}
	for _, name := range order {
		if count[name] > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate part name %q assigned to %d parts", name, count[name]),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateTargets checks that parts are leaves and that every step applies
// to exactly one part.
func validateTargets(p *Plan) []ValidationError {
	var errs []ValidationError
	for _, id := range sortedIDs(p) {
		n := p.Nodes[id]
		if n.Kind.IsPart() {
			if len(n.Children) > 0 {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  fmt.Sprintf("%s part %q must not have children", n.Kind, n.Name),
					Severity: SeverityError,
				})
			}
			continue
		}
		if len(n.Children) != 1 {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("%s step must apply to exactly one part, has %d", n.Kind, len(n.Children)),
				Severity: SeverityError,
			})
			continue
		}
		if t := p.Nodes[n.Target()]; t != nil && !t.Kind.IsPart() {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("%s step targets a %s step, not a part", n.Kind, t.Kind),
				Severity: SeverityError,
			})
		}
	}
	return errs
}
