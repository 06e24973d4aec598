package source

import "slices"

// StringID is a stable handle to an interned name.
type StringID uint32

// NoStringID marks the absence of a name.
const NoStringID StringID = 0

// Interner deduplicates names (generic parameters, associated types,
// protocols) into stable StringIDs. IDs are used as map keys everywhere a
// name participates in identity, so lookups stay integer comparisons.
//
// Registration is single-writer; once a compilation front-end stops
// interning, concurrent reads are safe.
type Interner struct {
	byID  []string // byID[0] = "" for NoStringID
	index map[string]StringID
}

// NewInterner constructs an interner with NoStringID reserved.
func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": 0},
	}
}

// Intern returns the ID for s, allocating one on first use.
func (i *Interner) Intern(s string) StringID {
	if id, ok := i.index[s]; ok {
		return id
	}
	// Own copy, so we never alias a caller's buffer.
	cpy := string([]byte(s))
	id := StringID(len(i.byID))
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

// Lookup returns the name for id, or false when id is invalid.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if !i.Has(id) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup panics when id is invalid.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("source: invalid StringID")
	}
	return s
}

// Has reports whether id names an interned string.
func (i *Interner) Has(id StringID) bool {
	return int(id) < len(i.byID)
}

// Len counts interned strings, NoStringID included.
func (i *Interner) Len() int {
	return len(i.byID)
}

// Snapshot returns a copy of every interned string.
func (i *Interner) Snapshot() []string {
	return slices.Clone(i.byID)
}
