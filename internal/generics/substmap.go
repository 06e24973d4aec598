package generics

import (
	"slices"

	"helix/internal/ice"
	"helix/internal/source"
	"helix/internal/types"
)

// Substitution binds one replacement slot: the concrete replacement type plus
// the conformances justifying it, positionally aligned to the signature's
// dependent-type enumeration.
type Substitution struct {
	Replacement  types.TypeID
	Conformances []types.ConformanceRef
}

// SubstitutionList is an ordered, flat substitution sequence tagged with the
// signature it was built against. The tag makes the classic shape mismatch —
// handing one signature's substitutions to another's environment — a checked
// construction error instead of a silent positional misread.
type SubstitutionList struct {
	sig  *Signature
	subs []Substitution
}

// BindSubstitutions pairs subs with sig, enforcing the positional protocol:
// exactly one entry per dependent type, in enumeration order.
func BindSubstitutions(sig *Signature, subs []Substitution) (SubstitutionList, error) {
	if want := len(sig.AllDependentTypes()); len(subs) != want {
		return SubstitutionList{}, ice.Newf(
			"substitution list carries %d entries, signature enumerates %d dependent types",
			len(subs), want)
	}
	return SubstitutionList{sig: sig, subs: slices.Clone(subs)}, nil
}

// Signature returns the signature the list was built against.
func (l SubstitutionList) Signature() *Signature {
	return l.sig
}

// Len returns the number of substitution slots.
func (l SubstitutionList) Len() int {
	return len(l.subs)
}

// At returns the substitution at position i.
func (l SubstitutionList) At(i int) Substitution {
	return l.subs[i]
}

// ForwardingSubstitutions produces the identity substitution list for this
// environment: each dependent type is replaced by its own context archetype.
// Conformances are resolved trivially against the protocol's own declaration;
// forwarding never specializes a conformance, so callers must not treat the
// result as witness-complete against any other replacement type.
func (e *Environment) ForwardingSubstitutions() SubstitutionList {
	depTypes := e.sig.AllDependentTypes()
	subs := make([]Substitution, 0, len(depTypes))
	for _, depTy := range depTypes {
		protos := e.sig.ConformanceRequirements(depTy)
		conformances := make([]types.ConformanceRef, 0, len(protos))
		for _, p := range protos {
			conformances = append(conformances, types.AbstractConformance(p))
		}
		subs = append(subs, Substitution{
			Replacement:  e.MapTypeIntoContext(depTy),
			Conformances: conformances,
		})
	}
	return SubstitutionList{sig: e.sig, subs: subs}
}

// ParentEdge records that an archetype is reachable as Parent's associated
// type Assoc, for routes a same-type requirement adds on top of the
// archetype's intrinsic parent.
type ParentEdge struct {
	Parent types.TypeID
	Assoc  source.StringID
}

// SubstitutionMap is the per-archetype record of a full substitution: the
// replacement type, its conformances, and any extra parent routes. It is a
// transient value with no arena affinity.
type SubstitutionMap struct {
	replacements map[types.TypeID]types.TypeID
	conformances map[types.TypeID][]types.ConformanceRef
	parents      map[types.TypeID][]ParentEdge
}

// Replacement returns the replacement type recorded for an archetype.
func (m *SubstitutionMap) Replacement(archetype types.TypeID) (types.TypeID, bool) {
	id, ok := m.replacements[archetype]
	return id, ok
}

// Conformances returns the conformances recorded for an archetype.
func (m *SubstitutionMap) Conformances(archetype types.TypeID) []types.ConformanceRef {
	return m.conformances[archetype]
}

// Parents returns the extra parent routes recorded for an archetype.
func (m *SubstitutionMap) Parents(archetype types.TypeID) []ParentEdge {
	return m.parents[archetype]
}

// Len counts archetypes with a recorded replacement.
func (m *SubstitutionMap) Len() int {
	return len(m.replacements)
}

func (m *SubstitutionMap) addSubstitution(archetype, replacement types.TypeID) {
	m.replacements[archetype] = replacement
}

func (m *SubstitutionMap) addConformances(archetype types.TypeID, refs []types.ConformanceRef) {
	m.conformances[archetype] = slices.Clone(refs)
}

func (m *SubstitutionMap) addParent(archetype, parent types.TypeID, assoc source.StringID) {
	edge := ParentEdge{Parent: parent, Assoc: assoc}
	if slices.Contains(m.parents[archetype], edge) {
		return
	}
	m.parents[archetype] = append(m.parents[archetype], edge)
}

// SubstitutionMapFor materializes the full substitution record for subs
// against this environment.
//
// Phase 1 walks the signature's dependent-type enumeration and consumes the
// list strictly positionally: each dependent type must resolve to exactly one
// archetype, which is bound to the matching entry's replacement type and
// conformances. Phase 2 walks the same-type requirements whose both sides are
// associated-type references and records a parent edge wherever a side's base
// archetype differs from the resolved archetype's intrinsic parent, so the
// map answers correctly for every spelling a later consumer may use.
func (e *Environment) SubstitutionMapFor(subs SubstitutionList) (*SubstitutionMap, error) {
	if subs.sig != e.sig {
		return nil, ice.Newf("substitution list built against a different signature")
	}
	depTypes := e.sig.AllDependentTypes()
	if len(subs.subs) != len(depTypes) {
		return nil, ice.Newf("substitution list carries %d entries, signature enumerates %d dependent types",
			len(subs.subs), len(depTypes))
	}

	result := &SubstitutionMap{
		replacements: make(map[types.TypeID]types.TypeID, len(depTypes)),
		conformances: make(map[types.TypeID][]types.ConformanceRef, len(depTypes)),
		parents:      make(map[types.TypeID][]ParentEdge),
	}

	for i, depTy := range depTypes {
		contextTy := e.MapTypeIntoContext(depTy)
		if e.in.Kind(contextTy) != types.KindArchetype {
			ice.Bugf("dependent type %s resolves to %s, not an archetype",
				e.in.String(depTy, nil), e.in.String(contextTy, nil))
		}
		sub := subs.subs[i]
		result.addSubstitution(contextTy, sub.Replacement)
		result.addConformances(contextTy, sub.Conformances)
	}

	for _, req := range e.sig.Requirements() {
		if req.Kind != ReqSameType {
			continue
		}
		// Requirement sides may arrive sugared; the shape check looks
		// through aliases, same as the enumeration in NewSignature.
		firstTy := e.in.Canonicalize(req.First)
		secondTy := e.in.Canonicalize(req.Second)
		first, firstOK := e.in.MemberInfo(firstTy)
		second, secondOK := e.in.MemberInfo(secondTy)
		if !firstOK || !secondOK {
			continue
		}

		archetype := e.substIntoContext(firstTy)
		if e.in.Kind(archetype) != types.KindArchetype {
			continue
		}
		firstBase := e.substIntoContext(first.Base)
		secondBase := e.substIntoContext(second.Base)
		if e.in.Kind(firstBase) != types.KindArchetype || e.in.Kind(secondBase) != types.KindArchetype {
			continue
		}

		if e.in.ArchetypeParent(archetype) != firstBase {
			result.addParent(archetype, firstBase, first.Assoc)
		}
		if e.in.ArchetypeParent(archetype) != secondBase {
			result.addParent(archetype, secondBase, second.Assoc)
		}
	}

	return result, nil
}
