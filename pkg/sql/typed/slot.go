package typed

import "strconv"

// Slot is a single parameter position within a statement, identified by a 1-based index
// or by name.
type Slot struct {
	index int
	name  string
}

// Index returns the slot of the i-th positional parameter, starting at 1
func Index(i int) Slot {
	return Slot{index: i}
}

// Named returns the slot of the `:name` parameter
func Named(name string) Slot {
	return Slot{name: name}
}

// IsZero returns true for a slot that identifies nothing
func (s Slot) IsZero() bool {
	return s.index <= 0 && s.name == ""
}

// IsNamed returns true for slots created with Named
func (s Slot) IsNamed() bool {
	return s.name != ""
}

// String implements the Stringer interface
func (s Slot) String() string {
	if s.name != "" {
		return ":" + s.name
	}
	return "?" + strconv.Itoa(s.index)
}
