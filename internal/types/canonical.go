package types

// Canonicalize strips alias sugar and parameter spellings, returning the
// unique representation used as a map key. Structure is rebuilt bottom-up so
// sugar buried inside arrays, tuples and function types is stripped too.
func (in *Interner) Canonicalize(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case KindAlias:
		info, ok := in.AliasInfo(id)
		if !ok {
			return id
		}
		return in.Canonicalize(info.Target)

	case KindGenericParam:
		info, ok := in.TypeParamInfo(id)
		if !ok {
			return id
		}
		return in.CanonicalParam(info.Depth, info.Index)

	case KindDependentMember:
		info, ok := in.MemberInfo(id)
		if !ok {
			return id
		}
		base := in.Canonicalize(info.Base)
		if base == info.Base {
			return id
		}
		return in.MemberType(base, info.Assoc)

	case KindArray, KindPointer, KindReference:
		elem := in.Canonicalize(tt.Elem)
		if elem == tt.Elem {
			return id
		}
		clone := tt
		clone.Elem = elem
		return in.Intern(clone)

	case KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok {
			return id
		}
		elems := make([]TypeID, len(info.Elems))
		changed := false
		for i, e := range info.Elems {
			elems[i] = in.Canonicalize(e)
			changed = changed || elems[i] != e
		}
		if !changed {
			return id
		}
		return in.RegisterTuple(elems)

	case KindFn:
		info, ok := in.FnInfo(id)
		if !ok {
			return id
		}
		params := make([]TypeID, len(info.Params))
		changed := false
		for i, p := range info.Params {
			params[i] = in.Canonicalize(p)
			changed = changed || params[i] != p
		}
		result := in.Canonicalize(info.Result)
		changed = changed || result != info.Result
		if !changed {
			return id
		}
		return in.RegisterFn(params, result)

	default:
		return id
	}
}

// HasArchetype reports whether any archetype occurs in the type.
func (in *Interner) HasArchetype(id TypeID) bool {
	return in.containsKind(id, func(k Kind) bool { return k == KindArchetype })
}

// HasTypeParameter reports whether a generic parameter or dependent member
// occurs in the type.
func (in *Interner) HasTypeParameter(id TypeID) bool {
	return in.containsKind(id, func(k Kind) bool {
		return k == KindGenericParam || k == KindDependentMember
	})
}

// HasError reports whether an error placeholder occurs in the type.
func (in *Interner) HasError(id TypeID) bool {
	return in.containsKind(id, func(k Kind) bool { return k == KindError })
}

func (in *Interner) containsKind(id TypeID, pred func(Kind) bool) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	if pred(tt.Kind) {
		return true
	}
	switch tt.Kind {
	case KindAlias:
		info, ok := in.AliasInfo(id)
		return ok && in.containsKind(info.Target, pred)
	case KindDependentMember:
		info, ok := in.MemberInfo(id)
		return ok && in.containsKind(info.Base, pred)
	case KindArray, KindPointer, KindReference:
		return in.containsKind(tt.Elem, pred)
	case KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok {
			return false
		}
		for _, e := range info.Elems {
			if in.containsKind(e, pred) {
				return true
			}
		}
		return false
	case KindFn:
		info, ok := in.FnInfo(id)
		if !ok {
			return false
		}
		for _, p := range info.Params {
			if in.containsKind(p, pred) {
				return true
			}
		}
		return in.containsKind(info.Result, pred)
	default:
		return false
	}
}
