package elasticbuf

import "fmt"

// Element is the payload carried through the buffer. The buffer never looks
// inside it.
type Element uint64

// Slot holds at most one Element.
type Slot struct {
	occupied bool
	value    Element
}

// Empty returns a slot that holds nothing.
func Empty() Slot {
	return Slot{}
}

// Occupied returns a slot that holds v.
func Occupied(v Element) Slot {
	return Slot{occupied: true, value: v}
}

// IsEmpty tells if the slot holds nothing.
func (s Slot) IsEmpty() bool {
	return !s.occupied
}

// Value returns the element in the slot and whether there is one.
func (s Slot) Value() (Element, bool) {
	return s.value, s.occupied
}

func (s Slot) String() string {
	if !s.occupied {
		return "Empty"
	}

	return fmt.Sprintf("Occupied(%#x)", uint64(s.value))
}

// State is the content of the buffer. Overflow may only be occupied while Main
// is occupied.
type State struct {
	Main     Slot
	Overflow Slot
}

// Size returns the number of elements held.
func (s State) Size() int {
	n := 0
	if s.Main.occupied {
		n++
	}

	if s.Overflow.occupied {
		n++
	}

	return n
}

// IsValid tells if the state keeps the Overflow slot behind the Main slot.
func (s State) IsValid() bool {
	return s.Main.occupied || !s.Overflow.occupied
}

func (s State) String() string {
	return fmt.Sprintf("{Main: %s, Overflow: %s}", s.Main, s.Overflow)
}

func (s State) mustBeValid() {
	if !s.IsValid() {
		panic(fmt.Sprintf("elasticbuf: overflow occupied behind empty main: %s", s))
	}
}
