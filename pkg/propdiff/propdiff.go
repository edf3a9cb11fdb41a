// Package propdiff computes property-level diffs between a descriptor's
// desired properties and a driver's observed state. Only properties declared
// in the descriptor participate; externally managed properties are ignored.
package propdiff

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Change records a single property drift.
type Change struct {
	Property string
	Old      any
	New      any
}

// String renders the change as "~ property: old -> new".
func (c Change) String() string {
	return fmt.Sprintf("~ %s: %v -> %v", c.Property, formatValue(c.Old), formatValue(c.New))
}

// Diff is an ordered sequence of property changes. An empty diff means the
// observed state already satisfies the descriptor.
type Diff struct {
	Changes []Change
}

// Empty reports whether no changes are required.
func (d Diff) Empty() bool {
	return len(d.Changes) == 0
}

// Properties returns the drifted property names in diff order.
func (d Diff) Properties() []string {
	props := make([]string, 0, len(d.Changes))
	for _, c := range d.Changes {
		props = append(props, c.Property)
	}
	return props
}

// Contains reports whether the named property drifted.
func (d Diff) Contains(property string) bool {
	for _, c := range d.Changes {
		if c.Property == property {
			return true
		}
	}
	return false
}

// String renders the diff one change per line for reports and logs.
func (d Diff) String() string {
	if d.Empty() {
		return ""
	}

	lines := make([]string, 0, len(d.Changes))
	for _, c := range d.Changes {
		lines = append(lines, c.String())
	}
	return strings.Join(lines, "\n") + "\n"
}

func formatValue(v any) string {
	if v == nil {
		return "<unset>"
	}
	return fmt.Sprintf("%v", v)
}

// Compute diffs desired against observed. Properties are compared only when
// declared in desired; order is deterministic (sorted by property name).
func Compute(desired, observed map[string]any) Diff {
	keys := make([]string, 0, len(desired))
	for k := range desired {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var changes []Change
	for _, key := range keys {
		want := desired[key]
		got, ok := observed[key]
		if !ok {
			changes = append(changes, Change{Property: key, Old: nil, New: want})
			continue
		}
		if !equal(want, got) {
			changes = append(changes, Change{Property: key, Old: got, New: want})
		}
	}

	return Diff{Changes: changes}
}

func equal(want, got any) bool {
	if want == nil && got == nil {
		return true
	}

	// Tolerate nil vs empty maps and slices so drivers can omit either form.
	if isEmptyContainer(want) && isEmptyContainer(got) {
		return true
	}

	return reflect.DeepEqual(want, got)
}

func isEmptyContainer(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return rv.Len() == 0
	default:
		return false
	}
}
