package types

import (
	"sync"
	"testing"

	"helix/internal/source"
)

func TestInternerConcurrentRegistration(t *testing.T) {
	in := NewInterner()
	elems := []TypeID{in.Builtins().Int, in.Builtins().Bool}

	tupleIDs := make([]TypeID, 16)
	arrayIDs := make([]TypeID, 16)
	var wg sync.WaitGroup
	for i := range tupleIDs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			tupleIDs[i] = in.RegisterTuple(elems)
			arrayIDs[i] = in.Intern(MakeArray(in.Builtins().String, ArrayDynamicLength))
		}()
	}
	wg.Wait()

	for i := 1; i < len(tupleIDs); i++ {
		if tupleIDs[i] != tupleIDs[0] {
			t.Fatalf("concurrent registration split one tuple across IDs %d and %d", tupleIDs[0], tupleIDs[i])
		}
		if arrayIDs[i] != arrayIDs[0] {
			t.Fatalf("concurrent interning split one array across IDs %d and %d", arrayIDs[0], arrayIDs[i])
		}
	}
	info, ok := in.TupleInfo(tupleIDs[0])
	if !ok || len(info.Elems) != 2 {
		t.Fatalf("tuple metadata lost under concurrency")
	}
}

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Unit == NoTypeID || b.Bool == NoTypeID || b.Error == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	unit, _ := in.Lookup(b.Unit)
	if unit.Kind != KindUnit {
		t.Fatalf("expected unit kind, got %v", unit.Kind)
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner()
	elem := in.Intern(Type{Kind: KindString})
	arr1 := in.Intern(MakeArray(elem, ArrayDynamicLength))
	arr2 := in.Intern(MakeArray(elem, ArrayDynamicLength))
	if arr1 != arr2 {
		t.Fatalf("array types should be deduplicated")
	}
}

func TestReferenceMutabilityAffectsIdentity(t *testing.T) {
	in := NewInterner()
	elem := in.Builtins().Int
	mut := in.Intern(MakeReference(elem, true))
	imm := in.Intern(MakeReference(elem, false))
	if mut == imm {
		t.Fatalf("mutable and immutable references must differ")
	}
}

func TestTypeParamIdentity(t *testing.T) {
	in := NewInterner()
	names := source.NewInterner()
	tName := names.Intern("T")
	uName := names.Intern("U")

	p1 := in.RegisterTypeParam(tName, 0, 0)
	p2 := in.RegisterTypeParam(tName, 0, 0)
	if p1 != p2 {
		t.Fatalf("identical spellings must intern to the same TypeID")
	}

	// Same position under a different name is a distinct spelling with the
	// same canonical form.
	sugar := in.RegisterTypeParam(uName, 0, 0)
	if sugar == p1 {
		t.Fatalf("distinct spellings must not share a TypeID")
	}
	if in.Canonicalize(sugar) != in.Canonicalize(p1) {
		t.Fatalf("spellings of the same position must canonicalize together")
	}
	if in.Canonicalize(p1) != in.CanonicalParam(0, 0) {
		t.Fatalf("canonical form must be the nameless parameter")
	}

	other := in.RegisterTypeParam(tName, 0, 1)
	if in.Canonicalize(other) == in.Canonicalize(p1) {
		t.Fatalf("different positions must canonicalize apart")
	}
}

func TestArchetypesAreFreshIdentities(t *testing.T) {
	in := NewInterner()
	names := source.NewInterner()
	n := names.Intern("T")

	a1 := in.NewArchetype(n, nil)
	a2 := in.NewArchetype(n, nil)
	if a1 == a2 {
		t.Fatalf("archetypes must never merge structurally")
	}
	if in.ArchetypeParent(a1) != NoTypeID {
		t.Fatalf("primary archetype has no parent")
	}
}

func TestNestedArchetypeRoutes(t *testing.T) {
	in := NewInterner()
	names := source.NewInterner()
	elem := names.Intern("Element")

	base := in.NewArchetype(names.Intern("T"), nil)
	child := in.NewNestedArchetype(base, elem, nil)
	if in.ArchetypeParent(child) != base {
		t.Fatalf("nested archetype must record its intrinsic parent")
	}
	got, ok := in.ArchetypeNested(base, elem)
	if !ok || got != child {
		t.Fatalf("parent must route %q to the child archetype", "Element")
	}

	// A same-type constraint can make the child reachable from another base
	// without changing the intrinsic parent.
	other := in.NewArchetype(names.Intern("U"), nil)
	in.AddNestedRoute(other, elem, child)
	if got, ok := in.ArchetypeNested(other, elem); !ok || got != child {
		t.Fatalf("extra route not recorded")
	}
	if in.ArchetypeParent(child) != base {
		t.Fatalf("extra routes must not rewrite the intrinsic parent")
	}
}

func TestMemberTypeDeduplicates(t *testing.T) {
	in := NewInterner()
	names := source.NewInterner()
	elem := names.Intern("Element")

	p := in.CanonicalParam(0, 0)
	m1 := in.MemberType(p, elem)
	m2 := in.MemberType(p, elem)
	if m1 != m2 {
		t.Fatalf("dependent members must be deduplicated")
	}
}

func TestCanonicalizeStripsAliasInsideStructure(t *testing.T) {
	in := NewInterner()
	names := source.NewInterner()

	intID := in.Builtins().Int
	alias := in.RegisterAlias(names.Intern("Length"), intID)
	arr := in.Intern(MakeArray(alias, ArrayDynamicLength))
	want := in.Intern(MakeArray(intID, ArrayDynamicLength))
	if in.Canonicalize(arr) != want {
		t.Fatalf("alias sugar must be stripped inside arrays")
	}
}

func TestContainsPredicates(t *testing.T) {
	in := NewInterner()
	names := source.NewInterner()

	p := in.RegisterTypeParam(names.Intern("T"), 0, 0)
	arch := in.NewArchetype(names.Intern("T"), nil)
	arrP := in.Intern(MakeArray(p, ArrayDynamicLength))
	tup := in.RegisterTuple([]TypeID{in.Builtins().Int, arch})
	fnErr := in.RegisterFn([]TypeID{in.Builtins().Int}, in.Builtins().Error)

	if !in.HasTypeParameter(arrP) || in.HasTypeParameter(tup) {
		t.Fatalf("HasTypeParameter misreported")
	}
	if !in.HasArchetype(tup) || in.HasArchetype(arrP) {
		t.Fatalf("HasArchetype misreported")
	}
	if !in.HasError(fnErr) || in.HasError(tup) {
		t.Fatalf("HasError misreported")
	}
	member := in.MemberType(p, names.Intern("Element"))
	if !in.HasTypeParameter(member) {
		t.Fatalf("dependent members count as unresolved type parameters")
	}
}
