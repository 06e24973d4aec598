// Package generics binds the formal parameters of a generic declaration to
// the per-instantiation archetypes used while checking and lowering its body,
// and provides the substitution machinery that moves types between the
// interface and context representations.
//
// Signatures arrive here already canonicalized and validated; nothing in this
// package diagnoses user errors. A binding that does not fit its signature is
// a bug in the caller and is reported through the internal-error channel
// (package ice), never through user diagnostics.
package generics

import (
	"fmt"

	"helix/internal/ice"
	"helix/internal/types"
)

// RequirementKind enumerates the requirement forms a signature can carry.
type RequirementKind uint8

const (
	// ReqConformance requires First to conform to Protocol.
	ReqConformance RequirementKind = iota
	// ReqSameType requires First and Second to be the same type.
	ReqSameType
	// ReqSuperclass requires First to be a subclass of Second.
	ReqSuperclass
	// ReqLayout constrains First's layout.
	ReqLayout
)

func (k RequirementKind) String() string {
	switch k {
	case ReqConformance:
		return "conformance"
	case ReqSameType:
		return "same-type"
	case ReqSuperclass:
		return "superclass"
	case ReqLayout:
		return "layout"
	default:
		return fmt.Sprintf("RequirementKind(%d)", k)
	}
}

// Requirement is one entry of a signature's requirement list. First is always
// set; Second is set for same-type and superclass requirements, Protocol for
// conformance requirements, Layout for layout requirements.
type Requirement struct {
	Kind     RequirementKind
	First    types.TypeID
	Second   types.TypeID
	Protocol types.ProtocolID
	Layout   LayoutKind
}

// LayoutKind classifies layout requirements.
type LayoutKind uint8

const (
	LayoutUnknown LayoutKind = iota
	LayoutTrivial
	LayoutRefCounted
)

// Signature is the canonicalized generic parameter list plus requirement list
// of one declaration. It is immutable after NewSignature and borrowed by
// every Environment built against it.
type Signature struct {
	in       *types.Interner
	params   []types.TypeID // original spellings, declaration order
	reqs     []Requirement
	depTypes []types.TypeID // canonical dependent-type enumeration
}

// NewSignature builds a signature from declared parameters (original
// spellings, declaration order) and a validated requirement list. Parameters
// that are not generic parameter types indicate a broken builder upstream.
func NewSignature(in *types.Interner, params []types.TypeID, reqs []Requirement) *Signature {
	sig := &Signature{in: in}
	sig.params = append(sig.params, params...)
	sig.reqs = append(sig.reqs, reqs...)

	// The dependent-type enumeration fixes the positional protocol every
	// substitution list must follow: canonical parameters in declaration
	// order, then the first-seen canonical subject of each conformance,
	// superclass and layout requirement on an associated type. Same-type
	// requirements never add slots of their own; they are reconciled through
	// parent linkage instead.
	seen := make(map[types.TypeID]struct{}, len(params))
	for _, p := range params {
		canonical := in.Canonicalize(p)
		if in.Kind(canonical) != types.KindGenericParam {
			ice.Bugf("signature parameter %s is not a generic parameter", in.String(p, nil))
		}
		if _, dup := seen[canonical]; dup {
			ice.Bugf("signature declares parameter %s twice", in.String(canonical, nil))
		}
		seen[canonical] = struct{}{}
		sig.depTypes = append(sig.depTypes, canonical)
	}
	for _, req := range reqs {
		if req.Kind == ReqSameType {
			continue
		}
		subject := in.Canonicalize(req.First)
		if in.Kind(subject) != types.KindDependentMember {
			continue
		}
		if _, dup := seen[subject]; dup {
			continue
		}
		seen[subject] = struct{}{}
		sig.depTypes = append(sig.depTypes, subject)
	}
	return sig
}

// GenericParams returns the declared parameters in declaration order,
// original spellings preserved.
func (sig *Signature) GenericParams() []types.TypeID {
	return sig.params
}

// Requirements returns the requirement list.
func (sig *Signature) Requirements() []Requirement {
	return sig.reqs
}

// AllDependentTypes returns the canonical enumeration of every position that
// requires its own replacement slot in a substitution list.
func (sig *Signature) AllDependentTypes() []types.TypeID {
	return sig.depTypes
}

// ConformanceRequirements returns the protocols the signature requires of the
// given dependent type, in requirement order.
func (sig *Signature) ConformanceRequirements(depTy types.TypeID) []types.ProtocolID {
	canonical := sig.in.Canonicalize(depTy)
	var out []types.ProtocolID
	for _, req := range sig.reqs {
		if req.Kind != ReqConformance {
			continue
		}
		if sig.in.Canonicalize(req.First) == canonical {
			out = append(out, req.Protocol)
		}
	}
	return out
}
