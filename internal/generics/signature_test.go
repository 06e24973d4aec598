package generics

import (
	"slices"
	"testing"

	"helix/internal/ice"
	"helix/internal/source"
	"helix/internal/types"
)

func TestAllDependentTypesOrder(t *testing.T) {
	in := types.NewInterner()
	names := source.NewInterner()

	paramT := in.RegisterTypeParam(names.Intern("T"), 0, 0)
	paramU := in.RegisterTypeParam(names.Intern("U"), 0, 1)
	elem := names.Intern("Element")
	index := names.Intern("Index")

	collection := in.RegisterProtocol(names.Intern("Collection"))
	equatable := in.RegisterProtocol(names.Intern("Equatable"))

	tElem := in.MemberType(paramT, elem)
	tIndex := in.MemberType(paramT, index)
	uElem := in.MemberType(paramU, elem)

	sig := NewSignature(in, []types.TypeID{paramT, paramU}, []Requirement{
		{Kind: ReqConformance, First: paramT, Protocol: collection},
		{Kind: ReqConformance, First: paramU, Protocol: collection},
		{Kind: ReqConformance, First: tElem, Protocol: equatable},
		{Kind: ReqSameType, First: tElem, Second: uElem},
		{Kind: ReqConformance, First: tIndex, Protocol: equatable},
		{Kind: ReqConformance, First: tElem, Protocol: collection}, // repeat subject
	})

	want := []types.TypeID{
		in.Canonicalize(paramT),
		in.Canonicalize(paramU),
		in.Canonicalize(tElem),
		in.Canonicalize(tIndex),
	}
	if got := sig.AllDependentTypes(); !slices.Equal(got, want) {
		t.Fatalf("dependent-type enumeration out of order: got %v, want %v", got, want)
	}
}

func TestConformanceRequirementsMatchCanonically(t *testing.T) {
	in := types.NewInterner()
	names := source.NewInterner()

	paramT := in.RegisterTypeParam(names.Intern("T"), 0, 0)
	sugared := in.RegisterTypeParam(names.Intern("Scalar"), 0, 0)

	seq := in.RegisterProtocol(names.Intern("Sequence"))
	eq := in.RegisterProtocol(names.Intern("Equatable"))

	sig := NewSignature(in, []types.TypeID{paramT}, []Requirement{
		{Kind: ReqConformance, First: paramT, Protocol: seq},
		{Kind: ReqConformance, First: sugared, Protocol: eq},
	})

	got := sig.ConformanceRequirements(in.CanonicalParam(0, 0))
	want := []types.ProtocolID{seq, eq}
	if !slices.Equal(got, want) {
		t.Fatalf("conformance lookup must match through sugar: got %v, want %v", got, want)
	}
}

func TestNewSignatureRejectsBrokenParameterLists(t *testing.T) {
	in := types.NewInterner()
	names := source.NewInterner()
	paramT := in.RegisterTypeParam(names.Intern("T"), 0, 0)

	err := ice.Catch(func() {
		NewSignature(in, []types.TypeID{in.Builtins().Int}, nil)
	})
	if err == nil {
		t.Fatalf("a non-parameter in the parameter list must be fatal")
	}

	sugared := in.RegisterTypeParam(names.Intern("Alias"), 0, 0)
	err = ice.Catch(func() {
		NewSignature(in, []types.TypeID{paramT, sugared}, nil)
	})
	if err == nil {
		t.Fatalf("two spellings of one position in the parameter list must be fatal")
	}
}
