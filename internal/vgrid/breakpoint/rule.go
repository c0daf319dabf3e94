// internal/vgrid/breakpoint/rule.go
package breakpoint

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoMatchingRule is a configuration error: the rule set does not cover the reported width.
	ErrNoMatchingRule = errors.New("no layout rule matches the viewport width")
	// ErrInvalidRule is returned when a rule carries a negative gap or column width.
	ErrInvalidRule = errors.New("invalid layout rule")
	// ErrFallbackNotFirst is returned when an always-true rule is declared after other rules.
	// Since rules are scanned in reverse, such a fallback would shadow every rule before it.
	ErrFallbackNotFirst = errors.New("always-true layout rule must be declared first")
)

// Query is a viewport-width test. A zero Query matches every width.
type Query struct {
	MinWidth    float64
	MaxWidth    float64
	HasMinWidth bool
	HasMaxWidth bool
}

// Always returns the context-free fallback query.
func Always() Query { return Query{} }

// MinWidth matches widths >= px.
func MinWidth(px float64) Query { return Query{MinWidth: px, HasMinWidth: true} }

// MaxWidth matches widths <= px.
func MaxWidth(px float64) Query { return Query{MaxWidth: px, HasMaxWidth: true} }

// Between matches min <= width <= max.
func Between(min, max float64) Query {
	return Query{MinWidth: min, HasMinWidth: true, MaxWidth: max, HasMaxWidth: true}
}

// IsAlways reports whether the query has no conditions.
func (q Query) IsAlways() bool { return !q.HasMinWidth && !q.HasMaxWidth }

// Matches evaluates the query against a viewport width.
func (q Query) Matches(width float64) bool {
	if math.IsNaN(width) {
		return false
	}
	if q.HasMinWidth && width < q.MinWidth {
		return false
	}
	if q.HasMaxWidth && width > q.MaxWidth {
		return false
	}
	return true
}

// String renders the query in media-query form.
func (q Query) String() string {
	switch {
	case q.IsAlways():
		return "all"
	case q.HasMinWidth && q.HasMaxWidth:
		return fmt.Sprintf("(min-width: %gpx) and (max-width: %gpx)", q.MinWidth, q.MaxWidth)
	case q.HasMinWidth:
		return fmt.Sprintf("(min-width: %gpx)", q.MinWidth)
	default:
		return fmt.Sprintf("(max-width: %gpx)", q.MaxWidth)
	}
}

// Rule is one responsive layout rule. MinColumnWidth of zero means the rule
// does not define columns and the grid renders a single column.
type Rule struct {
	Query          Query
	Gap            float64
	MinColumnWidth float64
}

// HasMinColumnWidth reports whether the rule derives a column count from the container width.
func (r Rule) HasMinColumnWidth() bool { return r.MinColumnWidth > 0 }

// String is used in logs and the layout command output.
func (r Rule) String() string {
	if r.HasMinColumnWidth() {
		return fmt.Sprintf("%s gap=%g min=%g", r.Query, r.Gap, r.MinColumnWidth)
	}
	return fmt.Sprintf("%s gap=%g", r.Query, r.Gap)
}

// Validate checks a single rule.
func (r Rule) Validate() error {
	if r.Gap < 0 || math.IsNaN(r.Gap) || math.IsInf(r.Gap, 0) {
		return fmt.Errorf("%w: gap must be a non-negative number, got %g", ErrInvalidRule, r.Gap)
	}
	if r.MinColumnWidth < 0 || math.IsNaN(r.MinColumnWidth) || math.IsInf(r.MinColumnWidth, 0) {
		return fmt.Errorf("%w: min column width must be positive when set, got %g", ErrInvalidRule, r.MinColumnWidth)
	}
	return nil
}

// ValidateSet checks an ordered rule set. It cannot prove that every width is
// covered (that is only known at resolve time), but it rejects the mistakes
// that can be detected up front.
func ValidateSet(rules []Rule) error {
	if len(rules) == 0 {
		return fmt.Errorf("%w: rule set is empty", ErrNoMatchingRule)
	}
	for i, r := range rules {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
		if i > 0 && r.Query.IsAlways() {
			return fmt.Errorf("rule %d: %w", i, ErrFallbackNotFirst)
		}
	}
	return nil
}
