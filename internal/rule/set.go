package rule

import (
	"iter"
	"math/bits"
	"strings"
)

const setWords = (int(numRules) + 63) / 64

// Set is a dense bitset of rules. The zero value is empty and ready to use.
// Sets are plain values: copying a Set copies its contents.
type Set struct {
	words [setWords]uint64
}

// SetOf builds a set from the given rules.
func SetOf(rules ...Rule) Set {
	var s Set
	for _, r := range rules {
		s.Insert(r)
	}
	return s
}

// AllRules returns the set containing the whole catalog.
func AllRules() Set {
	var s Set
	for r := Rule(1); r < numRules; r++ {
		s.Insert(r)
	}
	return s
}

// Contains reports membership in O(1).
func (s Set) Contains(r Rule) bool {
	if !r.IsValid() {
		return false
	}
	return s.words[r>>6]&(1<<(r&63)) != 0
}

// ContainsAny reports whether any of rules is a member.
func (s Set) ContainsAny(rules ...Rule) bool {
	for _, r := range rules {
		if s.Contains(r) {
			return true
		}
	}
	return false
}

// Insert adds r to the set.
func (s *Set) Insert(r Rule) {
	if r.IsValid() {
		s.words[r>>6] |= 1 << (r & 63)
	}
}

// Remove deletes r from the set.
func (s *Set) Remove(r Rule) {
	if r.IsValid() {
		s.words[r>>6] &^= 1 << (r & 63)
	}
}

// Union returns s ∪ other.
func (s Set) Union(other Set) Set {
	for i := range s.words {
		s.words[i] |= other.words[i]
	}
	return s
}

// Difference returns s \ other.
func (s Set) Difference(other Set) Set {
	for i := range s.words {
		s.words[i] &^= other.words[i]
	}
	return s
}

// Intersect returns s ∩ other.
func (s Set) Intersect(other Set) Set {
	for i := range s.words {
		s.words[i] &= other.words[i]
	}
	return s
}

// Len returns the number of members.
func (s Set) Len() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// IsEmpty reports whether the set has no members.
func (s Set) IsEmpty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Each yields members in ascending order.
func (s Set) Each() iter.Seq[Rule] {
	return func(yield func(Rule) bool) {
		for i, w := range s.words {
			for w != 0 {
				bit := bits.TrailingZeros64(w)
				w &= w - 1
				if !yield(Rule(i*64 + bit)) { // #nosec G115 -- bounded by numRules
					return
				}
			}
		}
	}
}

// Rules returns the members in ascending order.
func (s Set) Rules() []Rule {
	out := make([]Rule, 0, s.Len())
	for r := range s.Each() {
		out = append(out, r)
	}
	return out
}

// Codes returns member codes in ascending order.
func (s Set) Codes() []string {
	out := make([]string, 0, s.Len())
	for r := range s.Each() {
		out = append(out, r.Code())
	}
	return out
}

func (s Set) String() string {
	return "{" + strings.Join(s.Codes(), ", ") + "}"
}
