// internal/vgrid/breakpoint/resolve_test.go
package breakpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cascadeRules is the canonical author-ordered set: fallback first, narrowest last.
func cascadeRules() []Rule {
	return []Rule{
		{Query: Always(), Gap: 16},
		{Query: MinWidth(500), Gap: 32, MinColumnWidth: 360},
		{Query: MinWidth(960), Gap: 32, MinColumnWidth: 420},
	}
}

func TestResolve(t *testing.T) {
	rules := cascadeRules()

	tests := []struct {
		name  string
		width float64
		want  Rule
	}{
		{"wide viewport picks the narrowest matching rule", 1000, rules[2]},
		{"exact boundary is inclusive", 960, rules[2]},
		{"medium viewport", 600, rules[1]},
		{"just below the medium boundary falls back", 499.5, rules[0]},
		{"narrow viewport falls back", 300, rules[0]},
		{"zero width falls back", 0, rules[0]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(rules, tt.width)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_ForwardScanWouldDiffer(t *testing.T) {
	// Overlapping predicates: both later rules match at 1000px. The reverse
	// scan must pick the last declared one, not the first match.
	rules := cascadeRules()
	got, err := Resolve(rules, 1000)
	require.NoError(t, err)
	assert.Equal(t, 420.0, got.MinColumnWidth)
	assert.NotEqual(t, rules[1], got)
}

func TestResolve_NoMatch(t *testing.T) {
	t.Run("should fail when no rule covers the width", func(t *testing.T) {
		rules := []Rule{{Query: MinWidth(500), Gap: 8}}
		_, err := Resolve(rules, 320)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoMatchingRule)
		assert.Contains(t, err.Error(), "320")
	})

	t.Run("should fail on an empty rule set", func(t *testing.T) {
		_, err := Resolve(nil, 1024)
		assert.ErrorIs(t, err, ErrNoMatchingRule)
	})
}

func TestQueryMatches(t *testing.T) {
	assert.True(t, Always().Matches(0))
	assert.True(t, MinWidth(500).Matches(500))
	assert.False(t, MinWidth(500).Matches(499.99))
	assert.True(t, MaxWidth(959).Matches(959))
	assert.False(t, MaxWidth(959).Matches(960))
	assert.True(t, Between(500, 959).Matches(700))
	assert.False(t, Between(500, 959).Matches(1200))
}

func TestValidateSet(t *testing.T) {
	t.Run("should accept the canonical cascade", func(t *testing.T) {
		assert.NoError(t, ValidateSet(cascadeRules()))
	})

	t.Run("should reject a fallback that is not first", func(t *testing.T) {
		rules := []Rule{
			{Query: MinWidth(500), Gap: 32, MinColumnWidth: 360},
			{Query: Always(), Gap: 16},
		}
		err := ValidateSet(rules)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFallbackNotFirst)
	})

	t.Run("should reject negative gaps", func(t *testing.T) {
		err := ValidateSet([]Rule{{Query: Always(), Gap: -1}})
		assert.ErrorIs(t, err, ErrInvalidRule)
	})

	t.Run("should reject negative column widths", func(t *testing.T) {
		err := ValidateSet([]Rule{{Query: Always(), MinColumnWidth: -10}})
		assert.ErrorIs(t, err, ErrInvalidRule)
	})

	t.Run("should reject an empty set", func(t *testing.T) {
		assert.Error(t, ValidateSet(nil))
	})
}
