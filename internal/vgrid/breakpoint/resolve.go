// internal/vgrid/breakpoint/resolve.go
package breakpoint

import "fmt"

// Resolve returns the active rule for a viewport width.
//
// Rules are authored from the widest applicability to the narrowest and are
// examined in reverse, so the last declared rule that still matches wins. This
// mirrors the CSS cascade, where a later media block overrides an earlier one.
func Resolve(rules []Rule, viewportWidth float64) (Rule, error) {
	for i := len(rules) - 1; i >= 0; i-- {
		if rules[i].Query.Matches(viewportWidth) {
			return rules[i], nil
		}
	}
	return Rule{}, fmt.Errorf("%w: width %g with %d rule(s)", ErrNoMatchingRule, viewportWidth, len(rules))
}
