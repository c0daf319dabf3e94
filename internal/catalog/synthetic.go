// internal/catalog/synthetic.go
package catalog

import (
	"context"
	"fmt"
)

// Section names of the demo report.
const (
	SectionChanged = "Changed"
	SectionNew     = "New"
	SectionPassed  = "Passed"
)

// Synthetic is the built-in demo report: 3 failed, 20 new and 1500 passed items.
type Synthetic struct {
	sections []string
	items    map[string][]Item
}

var _ Source = (*Synthetic)(nil)

// NewSynthetic builds the demo report.
func NewSynthetic() *Synthetic {
	return NewSyntheticWith(map[string]int{
		SectionChanged: 3,
		SectionNew:     20,
		SectionPassed:  1500,
	})
}

// NewSyntheticWith builds a report with the given section sizes. Only the demo
// section names are recognised, and they keep the demo order.
func NewSyntheticWith(counts map[string]int) *Synthetic {
	s := &Synthetic{items: make(map[string][]Item)}
	for _, name := range []string{SectionChanged, SectionNew, SectionPassed} {
		n, ok := counts[name]
		if !ok {
			continue
		}
		s.sections = append(s.sections, name)
		s.items[name] = Generate(name, n)
	}
	return s
}

// Generate produces n items for a demo section, keyed <prefix>_<i>.
func Generate(section string, n int) []Item {
	prefix, status := "item", StatusNew
	switch section {
	case SectionChanged:
		prefix, status = "failed", StatusFailed
	case SectionNew:
		prefix, status = "new", StatusNew
	case SectionPassed:
		prefix, status = "passed", StatusPassed
	}
	items := make([]Item, n)
	for i := range items {
		key := fmt.Sprintf("%s_%d", prefix, i)
		items[i] = Item{Key: key, Title: key, Section: section, Status: status}
	}
	return items
}

func (s *Synthetic) Sections(context.Context) ([]string, error) {
	return append([]string(nil), s.sections...), nil
}

func (s *Synthetic) Load(_ context.Context, section string) ([]Item, error) {
	items, ok := s.items[section]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	return append([]Item(nil), items...), nil
}

// All returns every item in section order.
func (s *Synthetic) All() []Item {
	var all []Item
	for _, name := range s.sections {
		all = append(all, s.items[name]...)
	}
	return all
}

func (s *Synthetic) Close() error { return nil }
