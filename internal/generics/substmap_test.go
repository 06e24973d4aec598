package generics

import (
	"testing"

	"helix/internal/ice"
	"helix/internal/source"
	"helix/internal/types"
)

func TestSubstitutionMapEndToEnd(t *testing.T) {
	in, _, env, _, arch := singleParamEnv(t)

	list, err := BindSubstitutions(env.Signature(), []Substitution{
		{Replacement: in.Builtins().Int},
	})
	if err != nil {
		t.Fatalf("BindSubstitutions: %v", err)
	}
	m, err := env.SubstitutionMapFor(list)
	if err != nil {
		t.Fatalf("SubstitutionMapFor: %v", err)
	}
	if got, ok := m.Replacement(arch); !ok || got != in.Builtins().Int {
		t.Fatalf("archetype must be replaced by int, got %d ok=%v", got, ok)
	}
	if len(m.Conformances(arch)) != 0 {
		t.Fatalf("no conformances were supplied")
	}
	if m.Len() != 1 {
		t.Fatalf("exactly one slot must be consumed, got %d", m.Len())
	}
}

func TestBindSubstitutionsShapeCheck(t *testing.T) {
	_, _, env, _, _ := singleParamEnv(t)

	if _, err := BindSubstitutions(env.Signature(), nil); err == nil {
		t.Fatalf("an undersized substitution list must be rejected")
	}
	if _, err := BindSubstitutions(env.Signature(), make([]Substitution, 2)); err == nil {
		t.Fatalf("an oversized substitution list must be rejected")
	}
}

func TestSubstitutionMapRejectsForeignList(t *testing.T) {
	in, names, env, _, _ := singleParamEnv(t)

	otherParam := in.RegisterTypeParam(names.Intern("X"), 1, 0)
	otherSig := NewSignature(in, []types.TypeID{otherParam}, nil)
	list, err := BindSubstitutions(otherSig, []Substitution{{Replacement: in.Builtins().Int}})
	if err != nil {
		t.Fatalf("BindSubstitutions: %v", err)
	}
	if _, err := env.SubstitutionMapFor(list); err == nil {
		t.Fatalf("a list tagged with another signature must be rejected")
	}
}

func TestForwardingSubstitutions(t *testing.T) {
	in := types.NewInterner()
	names := source.NewInterner()

	paramT := in.RegisterTypeParam(names.Intern("T"), 0, 0)
	seq := in.RegisterProtocol(names.Intern("Sequence"))
	sig := NewSignature(in, []types.TypeID{paramT}, []Requirement{
		{Kind: ReqConformance, First: paramT, Protocol: seq},
	})
	arch := in.NewArchetype(names.Intern("T"), []types.ProtocolID{seq})
	env, err := NewEnvironment(NewArena(), sig, map[types.TypeID]types.TypeID{paramT: arch})
	if err != nil {
		t.Fatalf("NewEnvironment: %v", err)
	}

	fwd := env.ForwardingSubstitutions()
	if fwd.Len() != 1 {
		t.Fatalf("forwarding must fill one slot per dependent type, got %d", fwd.Len())
	}
	sub := fwd.At(0)
	if sub.Replacement != arch {
		t.Fatalf("forwarding replaces each dependent type with its own archetype")
	}
	if len(sub.Conformances) != 1 || sub.Conformances[0].Protocol != seq || !sub.Conformances[0].Abstract {
		t.Fatalf("forwarding conformances must be the declared-on-protocol references: %+v", sub.Conformances)
	}

	// A forwarding list feeds straight back into the substitution map.
	m, err := env.SubstitutionMapFor(fwd)
	if err != nil {
		t.Fatalf("SubstitutionMapFor: %v", err)
	}
	if got, _ := m.Replacement(arch); got != arch {
		t.Fatalf("identity forwarding must bind the archetype to itself")
	}
}

// collectionPair builds the classic same-type scenario: T and U both
// Collection, T.Element == U.Element, with the shared element archetype
// intrinsically parented under T.
func collectionPair(t *testing.T) (*types.Interner, *Environment, types.TypeID, types.TypeID, types.TypeID, source.StringID) {
	t.Helper()
	in := types.NewInterner()
	names := source.NewInterner()
	elem := names.Intern("Element")

	paramT := in.RegisterTypeParam(names.Intern("T"), 0, 0)
	paramU := in.RegisterTypeParam(names.Intern("U"), 0, 1)
	collection := in.RegisterProtocol(names.Intern("Collection"))
	equatable := in.RegisterProtocol(names.Intern("Equatable"))

	tElem := in.MemberType(paramT, elem)
	uElem := in.MemberType(paramU, elem)

	sig := NewSignature(in, []types.TypeID{paramT, paramU}, []Requirement{
		{Kind: ReqConformance, First: paramT, Protocol: collection},
		{Kind: ReqConformance, First: paramU, Protocol: collection},
		{Kind: ReqConformance, First: tElem, Protocol: equatable},
		{Kind: ReqSameType, First: tElem, Second: uElem},
	})

	archT := in.NewArchetype(names.Intern("T"), []types.ProtocolID{collection})
	archU := in.NewArchetype(names.Intern("U"), []types.ProtocolID{collection})
	shared := in.NewNestedArchetype(archT, elem, []types.ProtocolID{equatable})
	in.AddNestedRoute(archU, elem, shared)

	env, err := NewEnvironment(NewArena(), sig, map[types.TypeID]types.TypeID{
		paramT: archT,
		paramU: archU,
	})
	if err != nil {
		t.Fatalf("NewEnvironment: %v", err)
	}
	return in, env, archT, archU, shared, elem
}

func TestSubstitutionMapSameTypeLinkage(t *testing.T) {
	in, env, archT, archU, shared, elem := collectionPair(t)

	intArr := in.Intern(types.MakeArray(in.Builtins().Int, types.ArrayDynamicLength))
	list, err := BindSubstitutions(env.Signature(), []Substitution{
		{Replacement: intArr}, // T
		{Replacement: intArr}, // U
		{Replacement: in.Builtins().Int}, // T.Element
	})
	if err != nil {
		t.Fatalf("BindSubstitutions: %v", err)
	}
	m, err := env.SubstitutionMapFor(list)
	if err != nil {
		t.Fatalf("SubstitutionMapFor: %v", err)
	}

	if got, _ := m.Replacement(shared); got != in.Builtins().Int {
		t.Fatalf("shared element archetype must be replaced by int")
	}
	if got, _ := m.Replacement(archT); got != intArr {
		t.Fatalf("T's archetype must be replaced by [int]")
	}

	// The intrinsic parent is T's archetype, so only the U route needs an
	// extra edge.
	edges := m.Parents(shared)
	if len(edges) != 1 {
		t.Fatalf("expected exactly one parent edge, got %d", len(edges))
	}
	if edges[0].Parent != archU || edges[0].Assoc != elem {
		t.Fatalf("parent edge must point at U's archetype via Element, got %+v", edges[0])
	}
	if len(m.Parents(archT)) != 0 || len(m.Parents(archU)) != 0 {
		t.Fatalf("base archetypes carry no parent edges")
	}
}

func TestSubstitutionMapSameTypeThroughAlias(t *testing.T) {
	in := types.NewInterner()
	names := source.NewInterner()
	elem := names.Intern("Element")

	paramT := in.RegisterTypeParam(names.Intern("T"), 0, 0)
	paramU := in.RegisterTypeParam(names.Intern("U"), 0, 1)
	collection := in.RegisterProtocol(names.Intern("Collection"))

	tElem := in.MemberType(paramT, elem)
	uElem := in.MemberType(paramU, elem)
	// One side of the same-type requirement arrives alias-sugared.
	sugaredU := in.RegisterAlias(names.Intern("Item"), uElem)

	sig := NewSignature(in, []types.TypeID{paramT, paramU}, []Requirement{
		{Kind: ReqConformance, First: paramT, Protocol: collection},
		{Kind: ReqConformance, First: paramU, Protocol: collection},
		{Kind: ReqConformance, First: tElem, Protocol: collection},
		{Kind: ReqSameType, First: tElem, Second: sugaredU},
	})

	archT := in.NewArchetype(names.Intern("T"), []types.ProtocolID{collection})
	archU := in.NewArchetype(names.Intern("U"), []types.ProtocolID{collection})
	shared := in.NewNestedArchetype(archT, elem, nil)
	in.AddNestedRoute(archU, elem, shared)

	env, err := NewEnvironment(NewArena(), sig, map[types.TypeID]types.TypeID{
		paramT: archT,
		paramU: archU,
	})
	if err != nil {
		t.Fatalf("NewEnvironment: %v", err)
	}
	m, err := env.SubstitutionMapFor(env.ForwardingSubstitutions())
	if err != nil {
		t.Fatalf("SubstitutionMapFor: %v", err)
	}

	edges := m.Parents(shared)
	if len(edges) != 1 || edges[0].Parent != archU || edges[0].Assoc != elem {
		t.Fatalf("alias-wrapped same-type side must still add the parent edge, got %+v", edges)
	}
}

func TestSubstitutionMapConsumesPositionally(t *testing.T) {
	in, env, archT, archU, shared, _ := collectionPair(t)

	strID := in.Builtins().String
	list, err := BindSubstitutions(env.Signature(), []Substitution{
		{Replacement: in.Builtins().Int},
		{Replacement: in.Builtins().Float},
		{Replacement: strID},
	})
	if err != nil {
		t.Fatalf("BindSubstitutions: %v", err)
	}
	m, err := env.SubstitutionMapFor(list)
	if err != nil {
		t.Fatalf("SubstitutionMapFor: %v", err)
	}

	// Replacements land strictly by position, never by search.
	if got, _ := m.Replacement(archT); got != in.Builtins().Int {
		t.Fatalf("slot 0 belongs to T")
	}
	if got, _ := m.Replacement(archU); got != in.Builtins().Float {
		t.Fatalf("slot 1 belongs to U")
	}
	if got, _ := m.Replacement(shared); got != strID {
		t.Fatalf("slot 2 belongs to T.Element")
	}
	if m.Len() != 3 {
		t.Fatalf("every slot must be consumed exactly once, got %d", m.Len())
	}
}

func TestSubstitutionMapDependentTypeMustBeArchetype(t *testing.T) {
	in := types.NewInterner()
	names := source.NewInterner()

	paramT := in.RegisterTypeParam(names.Intern("T"), 0, 0)
	sig := NewSignature(in, []types.TypeID{paramT}, nil)
	env, err := NewEnvironment(NewArena(), sig, map[types.TypeID]types.TypeID{
		paramT: in.Builtins().Int, // already concrete
	})
	if err != nil {
		t.Fatalf("NewEnvironment: %v", err)
	}
	list, err := BindSubstitutions(sig, []Substitution{{Replacement: in.Builtins().Int}})
	if err != nil {
		t.Fatalf("BindSubstitutions: %v", err)
	}
	if err := ice.Catch(func() { _, _ = env.SubstitutionMapFor(list) }); err == nil {
		t.Fatalf("a dependent type resolving to a concrete type must be fatal")
	}
}
