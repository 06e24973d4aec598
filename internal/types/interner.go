package types

import (
	"fmt"
	"sync"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Bool    TypeID
	String  TypeID
	Int     TypeID
	Uint    TypeID
	Float   TypeID
	Error   TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Info-carrying kinds (generic params, archetypes, dependent members,
// tuples, fns, aliases) live in side tables addressed by Type.Payload.
//
// A mutex guards registration and lookup, so the interner is safe for
// concurrent use: substitution may intern a compound type it has never seen
// from any goroutine. Issued TypeIDs and their descriptors never change.
type Interner struct {
	mu       sync.RWMutex
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins

	params     []TypeParamInfo
	paramIndex map[TypeParamInfo]TypeID
	archetypes []ArchetypeInfo
	members    []DependentMemberInfo
	memberIdx  map[DependentMemberInfo]TypeID
	tuples     []TupleInfo
	fns        []FnInfo
	aliases    []AliasInfo
	protocols  []ProtocolInfo
	protoIndex map[uint32]ProtocolID // keyed by name StringID
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[typeKey]TypeID, 64),
	}
	in.builtins.Invalid = in.internRawLocked(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	in.builtins.Int = in.Intern(MakeInt(WidthAny))
	in.builtins.Uint = in.Intern(MakeUint(WidthAny))
	in.builtins.Float = in.Intern(MakeFloat(WidthAny))
	in.builtins.Error = in.Intern(Type{Kind: KindError})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRawLocked(t)
}

// internRawLocked adds the descriptor to the storage without consulting the
// map. Callers hold mu.
func (in *Interner) internRawLocked(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	key := typeKey(t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.lookupLocked(id)
}

func (in *Interner) lookupLocked(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

func (in *Interner) kindLocked(id TypeID) Kind {
	tt, ok := in.lookupLocked(id)
	if !ok {
		return KindInvalid
	}
	return tt.Kind
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Kind returns the kind for a TypeID, KindInvalid when unknown.
func (in *Interner) Kind(id TypeID) Kind {
	tt, ok := in.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return tt.Kind
}

// typeKey mirrors Type field-for-field; archetype payloads are unique per
// registration, so structural hashing never merges two archetype identities.
type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Count   uint32
	Width   Width
	Mutable bool
	Payload uint32
}
