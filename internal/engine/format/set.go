package format

import "strings"

// Set is the collection of formats active at one position.
// At most one format per Kind is present. Set is comparable with ==.
type Set struct {
	mask   uint16
	values [kindCount]string
}

// NewSet builds a set from formats. Later formats of the same kind win.
func NewSet(formats ...Format) Set {
	var s Set
	for _, f := range formats {
		s.Add(f)
	}
	return s
}

// Add activates f, replacing any format of the same kind.
func (s *Set) Add(f Format) {
	if !f.Kind.Valid() {
		return
	}
	s.mask |= 1 << f.Kind
	s.values[f.Kind] = f.Value
}

// Remove deactivates kind.
func (s *Set) Remove(kind Kind) {
	if !kind.Valid() {
		return
	}
	s.mask &^= 1 << kind
	s.values[kind] = ""
}

// Has reports whether a format of kind is active.
func (s Set) Has(kind Kind) bool {
	return kind.Valid() && s.mask&(1<<kind) != 0
}

// Get returns the active format of kind.
func (s Set) Get(kind Kind) (Format, bool) {
	if !s.Has(kind) {
		return Format{}, false
	}
	return Format{Kind: kind, Value: s.values[kind]}, true
}

// Contains reports whether exactly f (kind and value) is active.
func (s Set) Contains(f Format) bool {
	return s.Has(f.Kind) && s.values[f.Kind] == f.Value
}

// IsEmpty reports whether no format is active.
func (s Set) IsEmpty() bool {
	return s.mask == 0
}

// Len returns the number of active formats.
func (s Set) Len() int {
	n := 0
	for m := s.mask; m != 0; m &= m - 1 {
		n++
	}
	return n
}

// Formats returns the active formats in canonical kind order.
func (s Set) Formats() []Format {
	out := make([]Format, 0, s.Len())
	for k := Kind(0); k < kindCount; k++ {
		if s.Has(k) {
			out = append(out, Format{Kind: k, Value: s.values[k]})
		}
	}
	return out
}

// String renders the set as "{bold, link(https://x)}".
func (s Set) String() string {
	formats := s.Formats()
	parts := make([]string, len(formats))
	for i, f := range formats {
		parts[i] = f.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
