package types

import (
	"fmt"
	"strings"

	"helix/internal/source"
)

// String renders a type for debug output and internal-error messages.
// Canonical (nameless) parameters print in depth/index notation.
func (in *Interner) String(id TypeID, names *source.Interner) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "<no-type>"
	}
	name := func(id source.StringID) string {
		if names == nil {
			return fmt.Sprintf("#%d", id)
		}
		s, _ := names.Lookup(id)
		return s
	}
	switch tt.Kind {
	case KindUnit:
		return "()"
	case KindBool, KindString, KindError:
		return tt.Kind.String()
	case KindInt, KindUint, KindFloat:
		if tt.Width == WidthAny {
			return tt.Kind.String()
		}
		return fmt.Sprintf("%s%d", tt.Kind, tt.Width)
	case KindArray:
		if tt.Count == ArrayDynamicLength {
			return "[" + in.String(tt.Elem, names) + "]"
		}
		return fmt.Sprintf("[%s; %d]", in.String(tt.Elem, names), tt.Count)
	case KindPointer:
		return "*" + in.String(tt.Elem, names)
	case KindReference:
		if tt.Mutable {
			return "&mut " + in.String(tt.Elem, names)
		}
		return "&" + in.String(tt.Elem, names)
	case KindTuple:
		info, _ := in.TupleInfo(id)
		if info == nil {
			return "(?)"
		}
		parts := make([]string, len(info.Elems))
		for i, e := range info.Elems {
			parts[i] = in.String(e, names)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindFn:
		info, _ := in.FnInfo(id)
		if info == nil {
			return "fn(?)"
		}
		parts := make([]string, len(info.Params))
		for i, p := range info.Params {
			parts[i] = in.String(p, names)
		}
		return "fn(" + strings.Join(parts, ", ") + ") -> " + in.String(info.Result, names)
	case KindAlias:
		info, _ := in.AliasInfo(id)
		if info == nil {
			return "<alias?>"
		}
		return name(info.Name)
	case KindGenericParam:
		info, _ := in.TypeParamInfo(id)
		if info == nil {
			return "<param?>"
		}
		if info.Name == source.NoStringID {
			return fmt.Sprintf("τ_%d_%d", info.Depth, info.Index)
		}
		return name(info.Name)
	case KindArchetype:
		info, _ := in.ArchetypeInfo(id)
		if info == nil {
			return "<archetype?>"
		}
		if info.Parent != NoTypeID {
			return in.String(info.Parent, names) + "." + name(info.AssocName)
		}
		return "@" + name(info.Name)
	case KindDependentMember:
		info, _ := in.MemberInfo(id)
		if info == nil {
			return "<member?>"
		}
		return in.String(info.Base, names) + "." + name(info.Assoc)
	default:
		return tt.Kind.String()
	}
}
