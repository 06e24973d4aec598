package generics

import (
	"helix/internal/ice"
	"helix/internal/types"
)

// Arena owns every Environment built for one compilation session. Storage is
// append-only: environments are published once fully constructed and are
// never mutated or individually released afterwards.
type Arena struct {
	envs []*Environment
}

// NewArena constructs an empty environment arena.
func NewArena() *Arena {
	return &Arena{}
}

// Len counts the environments allocated so far.
func (a *Arena) Len() int {
	return len(a.envs)
}

// Environment owns the bidirectional mapping between a signature's canonical
// interface parameters and the context types of one instantiation.
//
// The forward map always holds exactly one entry per signature parameter. The
// reverse map is partial: only entries whose context type is an archetype get
// one, and it points back at the original, possibly sugared spelling so that
// MapTypeOutOfContext stays human-readable. When two parameters bind to the
// same archetype the reverse winner is unspecified; that indeterminacy is
// inherited, not a guarantee anyone may rely on.
//
// Construction is single-writer. A published environment is immutable and
// safe for unsynchronized concurrent reads; compound types a query has to
// intern on the fly go through the interner's own synchronization.
type Environment struct {
	sig *Signature
	in  *types.Interner

	interfaceToContext   map[types.TypeID]types.TypeID
	archetypeToInterface map[types.TypeID]types.TypeID
}

// NewEnvironment binds sig's parameters to context types and publishes the
// environment into arena. The binding must carry exactly one entry per
// signature parameter; keys are canonicalized on insertion and duplicate
// canonical keys reject the whole construction. Context types are usually
// archetypes but may be concrete when a parameter is already fixed; concrete
// entries get no reverse mapping.
func NewEnvironment(arena *Arena, sig *Signature, binding map[types.TypeID]types.TypeID) (*Environment, error) {
	if len(binding) == 0 {
		return nil, ice.Newf("generic environment built from an empty binding")
	}
	if len(binding) != len(sig.GenericParams()) {
		return nil, ice.Newf("generic environment binds %d parameters, signature declares %d",
			len(binding), len(sig.GenericParams()))
	}

	env := &Environment{
		sig:                  sig,
		in:                   sig.in,
		interfaceToContext:   make(map[types.TypeID]types.TypeID, len(binding)),
		archetypeToInterface: make(map[types.TypeID]types.TypeID, len(binding)),
	}
	for param, contextTy := range binding {
		canonical := sig.in.Canonicalize(param)
		if _, dup := env.interfaceToContext[canonical]; dup {
			return nil, ice.Newf("duplicate generic parameter %s in environment",
				sig.in.String(canonical, nil))
		}
		env.interfaceToContext[canonical] = contextTy
		if sig.in.Kind(contextTy) == types.KindArchetype {
			env.archetypeToInterface[contextTy] = param
		}
	}

	arena.envs = append(arena.envs, env)
	return env, nil
}

// Signature returns the owning signature.
func (e *Environment) Signature() *Signature {
	return e.sig
}

// ContainsPrimaryArchetype reports whether the archetype was minted for one
// of this environment's parameters.
func (e *Environment) ContainsPrimaryArchetype(archetype types.TypeID) bool {
	_, ok := e.archetypeToInterface[archetype]
	return ok
}

// MapTypeIntoContext substitutes every generic parameter occurring in t with
// its context binding. The result carries no unresolved type parameter unless
// it contains an error placeholder, which is passed through untouched: the
// failure it stands for was already diagnosed and must not trip a second,
// confusing invariant here.
func (e *Environment) MapTypeIntoContext(t types.TypeID) types.TypeID {
	result := e.substIntoContext(t)
	if e.in.HasTypeParameter(result) && !e.in.HasError(result) {
		ice.Bugf("type %s not fully substituted into context", e.in.String(result, nil))
	}
	return result
}

// MapParamIntoContext resolves a single generic parameter directly. The
// parameter must belong to this environment's signature.
func (e *Environment) MapParamIntoContext(param types.TypeID) types.TypeID {
	canonical := e.in.Canonicalize(param)
	if e.in.Kind(canonical) != types.KindGenericParam {
		ice.Bugf("%s is not a generic parameter", e.in.String(param, nil))
	}
	contextTy, ok := e.interfaceToContext[canonical]
	if !ok {
		ice.Bugf("missing generic parameter %s", e.in.String(canonical, nil))
	}
	return contextTy
}

// MapTypeOutOfContext substitutes every archetype occurring in t with the
// interface parameter that produced it, preserving the original spelling.
// An archetype foreign to this environment cannot be eliminated and is an
// internal error.
func (e *Environment) MapTypeOutOfContext(t types.TypeID) types.TypeID {
	result := e.substOutOfContext(t)
	if e.in.HasArchetype(result) {
		ice.Bugf("type %s still contains an archetype after mapping out of context",
			e.in.String(result, nil))
	}
	return result
}

// SugaredType recovers the declared spelling of a canonical-only parameter
// reference by scanning the signature's parameter list in declaration order.
func (e *Environment) SugaredType(param types.TypeID) types.TypeID {
	canonical := e.in.Canonicalize(param)
	for _, declared := range e.sig.GenericParams() {
		if e.in.Canonicalize(declared) == canonical {
			return declared
		}
	}
	ice.Bugf("missing generic parameter %s", e.in.String(canonical, nil))
	return types.NoTypeID
}

func (e *Environment) substIntoContext(id types.TypeID) types.TypeID {
	tt, ok := e.in.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case types.KindGenericParam:
		canonical := e.in.Canonicalize(id)
		if contextTy, ok := e.interfaceToContext[canonical]; ok {
			return contextTy
		}
		// Left in place; the postcondition check reports it.
		return id

	case types.KindDependentMember:
		info, ok := e.in.MemberInfo(id)
		if !ok {
			return id
		}
		base := e.substIntoContext(info.Base)
		if e.in.Kind(base) == types.KindArchetype {
			if child, ok := e.in.ArchetypeNested(base, info.Assoc); ok {
				return child
			}
		}
		if e.in.HasError(base) {
			return e.in.Builtins().Error
		}
		if base == info.Base {
			return id
		}
		return e.in.MemberType(base, info.Assoc)

	case types.KindAlias:
		info, ok := e.in.AliasInfo(id)
		if !ok {
			return id
		}
		target := e.substIntoContext(info.Target)
		if target == info.Target {
			// Nothing bound inside; keep the sugared spelling.
			return id
		}
		return target

	default:
		return e.substStructural(id, tt, e.substIntoContext)
	}
}

func (e *Environment) substOutOfContext(id types.TypeID) types.TypeID {
	tt, ok := e.in.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case types.KindArchetype:
		if iface, ok := e.archetypeToInterface[id]; ok {
			return iface
		}
		info, _ := e.in.ArchetypeInfo(id)
		if info == nil || info.Parent == types.NoTypeID {
			// Foreign archetype; the postcondition check reports it.
			return id
		}
		parent := e.substOutOfContext(info.Parent)
		if e.in.Kind(parent) == types.KindArchetype {
			return id
		}
		return e.in.MemberType(parent, info.AssocName)

	default:
		return e.substStructural(id, tt, e.substOutOfContext)
	}
}

// substStructural rebuilds container types around a recursive substitution,
// re-interning only when an element actually changed.
func (e *Environment) substStructural(id types.TypeID, tt types.Type, subst func(types.TypeID) types.TypeID) types.TypeID {
	switch tt.Kind {
	case types.KindArray, types.KindPointer, types.KindReference:
		elem := subst(tt.Elem)
		if elem == tt.Elem {
			return id
		}
		clone := tt
		clone.Elem = elem
		return e.in.Intern(clone)

	case types.KindTuple:
		info, ok := e.in.TupleInfo(id)
		if !ok {
			return id
		}
		elems := make([]types.TypeID, len(info.Elems))
		changed := false
		for i, el := range info.Elems {
			elems[i] = subst(el)
			changed = changed || elems[i] != el
		}
		if !changed {
			return id
		}
		return e.in.RegisterTuple(elems)

	case types.KindFn:
		info, ok := e.in.FnInfo(id)
		if !ok {
			return id
		}
		params := make([]types.TypeID, len(info.Params))
		changed := false
		for i, p := range info.Params {
			params[i] = subst(p)
			changed = changed || params[i] != p
		}
		result := subst(info.Result)
		changed = changed || result != info.Result
		if !changed {
			return id
		}
		return e.in.RegisterFn(params, result)

	case types.KindAlias:
		info, ok := e.in.AliasInfo(id)
		if !ok {
			return id
		}
		target := subst(info.Target)
		if target == info.Target {
			return id
		}
		return target

	case types.KindDependentMember:
		info, ok := e.in.MemberInfo(id)
		if !ok {
			return id
		}
		base := subst(info.Base)
		if base == info.Base {
			return id
		}
		return e.in.MemberType(base, info.Assoc)

	default:
		return id
	}
}
