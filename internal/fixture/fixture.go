// Package fixture loads generic-signature descriptions from TOML files and
// materializes them into a live interner, signature and environment. The
// format exists for the debug CLI and for batch invariant checking; the
// compiler proper never reads fixtures.
package fixture

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"fortio.org/safecast"

	"helix/internal/generics"
	"helix/internal/ice"
	"helix/internal/source"
	"helix/internal/types"
)

// File mirrors the on-disk TOML layout.
type File struct {
	Params        []ParamSpec        `toml:"params"`
	Requirements  []RequirementSpec  `toml:"requirements"`
	Binding       map[string]string  `toml:"binding"`
	Substitutions []SubstitutionSpec `toml:"substitutions"`
}

// ParamSpec declares one generic parameter.
type ParamSpec struct {
	Name string `toml:"name"`
}

// RequirementSpec declares one requirement. Kind selects which of the other
// fields apply: conformance uses first+protocol, same_type uses first+second,
// superclass uses first+second, layout uses first+layout.
type RequirementSpec struct {
	Kind     string `toml:"kind"`
	First    string `toml:"first"`
	Second   string `toml:"second"`
	Protocol string `toml:"protocol"`
	Layout   string `toml:"layout"`
}

// SubstitutionSpec declares one positional substitution slot.
type SubstitutionSpec struct {
	Replacement string   `toml:"replacement"`
	Conforms    []string `toml:"conforms"`
}

// World is a fully materialized fixture: interners, signature, environment
// and (when the file declares substitutions) a bound substitution list.
type World struct {
	Types     *types.Interner
	Names     *source.Interner
	Arena     *generics.Arena
	Signature *generics.Signature
	Env       *generics.Environment
	Params    []types.TypeID

	Subs    generics.SubstitutionList
	HasSubs bool
}

// Load reads and materializes a fixture file.
func Load(path string) (*World, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	w, err := Build(&f)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return w, nil
}

// ReadBytes materializes a fixture from raw TOML.
func ReadBytes(data []byte) (*World, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return Build(&f)
}

// Build materializes a decoded fixture.
func Build(f *File) (*World, error) {
	if len(f.Params) == 0 {
		return nil, fmt.Errorf("fixture declares no generic parameters")
	}
	b := &builder{
		f:        f,
		in:       types.NewInterner(),
		names:    source.NewInterner(),
		byName:   make(map[string]types.TypeID, len(f.Params)),
		contexts: make(map[types.TypeID]types.TypeID, len(f.Params)),
	}
	return b.build()
}

type builder struct {
	f     *File
	in    *types.Interner
	names *source.Interner

	params   []types.TypeID
	byName   map[string]types.TypeID          // parameter name -> interface type
	contexts map[types.TypeID]types.TypeID    // canonical interface type -> context type
	sig      *generics.Signature
}

func (b *builder) build() (*World, error) {
	for i, spec := range b.f.Params {
		if spec.Name == "" {
			return nil, fmt.Errorf("parameter %d has no name", i)
		}
		if _, dup := b.byName[spec.Name]; dup {
			return nil, fmt.Errorf("parameter %q declared twice", spec.Name)
		}
		index, err := safecast.Conv[uint32](i)
		if err != nil {
			return nil, fmt.Errorf("parameter count overflow: %w", err)
		}
		param := b.in.RegisterTypeParam(b.names.Intern(spec.Name), 0, index)
		b.params = append(b.params, param)
		b.byName[spec.Name] = param
	}

	reqs, err := b.requirements()
	if err != nil {
		return nil, err
	}
	if iceErr := ice.Catch(func() {
		b.sig = generics.NewSignature(b.in, b.params, reqs)
	}); iceErr != nil {
		return nil, iceErr
	}

	binding, err := b.binding()
	if err != nil {
		return nil, err
	}
	b.growArchetypes(reqs)

	arena := generics.NewArena()
	env, err := generics.NewEnvironment(arena, b.sig, binding)
	if err != nil {
		return nil, err
	}

	w := &World{
		Types:     b.in,
		Names:     b.names,
		Arena:     arena,
		Signature: b.sig,
		Env:       env,
		Params:    b.params,
	}
	if len(b.f.Substitutions) > 0 {
		subs := make([]generics.Substitution, 0, len(b.f.Substitutions))
		for i, spec := range b.f.Substitutions {
			replacement, err := b.parse(spec.Replacement)
			if err != nil {
				return nil, fmt.Errorf("substitution %d: %w", i, err)
			}
			refs := make([]types.ConformanceRef, 0, len(spec.Conforms))
			for _, name := range spec.Conforms {
				refs = append(refs, types.AbstractConformance(b.protocol(name)))
			}
			subs = append(subs, generics.Substitution{Replacement: replacement, Conformances: refs})
		}
		list, err := generics.BindSubstitutions(b.sig, subs)
		if err != nil {
			return nil, err
		}
		w.Subs = list
		w.HasSubs = true
	}
	return w, nil
}

func (b *builder) requirements() ([]generics.Requirement, error) {
	reqs := make([]generics.Requirement, 0, len(b.f.Requirements))
	for i, spec := range b.f.Requirements {
		first, err := b.parse(spec.First)
		if err != nil {
			return nil, fmt.Errorf("requirement %d: %w", i, err)
		}
		req := generics.Requirement{First: first}
		switch spec.Kind {
		case "conformance":
			if spec.Protocol == "" {
				return nil, fmt.Errorf("requirement %d: conformance needs a protocol", i)
			}
			req.Kind = generics.ReqConformance
			req.Protocol = b.protocol(spec.Protocol)
		case "same_type":
			second, err := b.parse(spec.Second)
			if err != nil {
				return nil, fmt.Errorf("requirement %d: %w", i, err)
			}
			req.Kind = generics.ReqSameType
			req.Second = second
		case "superclass":
			second, err := b.parse(spec.Second)
			if err != nil {
				return nil, fmt.Errorf("requirement %d: %w", i, err)
			}
			req.Kind = generics.ReqSuperclass
			req.Second = second
		case "layout":
			req.Kind = generics.ReqLayout
			switch spec.Layout {
			case "trivial":
				req.Layout = generics.LayoutTrivial
			case "ref_counted":
				req.Layout = generics.LayoutRefCounted
			default:
				return nil, fmt.Errorf("requirement %d: unknown layout %q", i, spec.Layout)
			}
		default:
			return nil, fmt.Errorf("requirement %d: unknown kind %q", i, spec.Kind)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// binding resolves the [binding] section. Parameters without an entry get a
// fresh archetype; "@Name" mints one explicitly; anything else is a concrete
// type expression.
func (b *builder) binding() (map[types.TypeID]types.TypeID, error) {
	bound := make(map[types.TypeID]types.TypeID, len(b.params))
	for name := range b.f.Binding {
		if _, ok := b.byName[name]; !ok {
			return nil, fmt.Errorf("binding names unknown parameter %q", name)
		}
	}
	for i, param := range b.params {
		spec, ok := b.f.Binding[b.f.Params[i].Name]
		if !ok {
			spec = "@" + b.f.Params[i].Name
		}
		var contextTy types.TypeID
		if spec != "" && spec[0] == '@' {
			contextTy = b.in.NewArchetype(b.names.Intern(spec[1:]), b.sig.ConformanceRequirements(param))
		} else {
			parsed, err := b.parse(spec)
			if err != nil {
				return nil, fmt.Errorf("binding %q: %w", b.f.Params[i].Name, err)
			}
			contextTy = parsed
		}
		bound[param] = contextTy
		b.contexts[b.in.Canonicalize(param)] = contextTy
	}
	return bound, nil
}

// growArchetypes walks the requirements and mints the nested archetypes the
// environment will resolve dependent members through: one intrinsic child per
// first-seen associated-type subject, plus extra routes for same-type
// requirements relating two spellings of one archetype.
func (b *builder) growArchetypes(reqs []generics.Requirement) {
	for _, req := range reqs {
		if req.Kind == generics.ReqSameType {
			continue
		}
		b.contextFor(req.First)
	}
	for _, req := range reqs {
		if req.Kind != generics.ReqSameType {
			continue
		}
		if _, ok := b.in.MemberInfo(req.First); !ok {
			continue
		}
		second, ok := b.in.MemberInfo(req.Second)
		if !ok {
			continue
		}
		shared := b.contextFor(req.First)
		base := b.contextFor(second.Base)
		if b.in.Kind(shared) != types.KindArchetype || b.in.Kind(base) != types.KindArchetype {
			continue
		}
		if _, ok := b.in.ArchetypeNested(base, second.Assoc); !ok {
			b.in.AddNestedRoute(base, second.Assoc, shared)
		}
	}
}

// contextFor resolves an interface type to its context type, minting nested
// archetypes on demand. Returns NoTypeID when the chain leaves archetype
// territory (e.g. a concrete binding).
func (b *builder) contextFor(id types.TypeID) types.TypeID {
	canonical := b.in.Canonicalize(id)
	if ctx, ok := b.contexts[canonical]; ok {
		return ctx
	}
	info, ok := b.in.MemberInfo(canonical)
	if !ok {
		return types.NoTypeID
	}
	base := b.contextFor(info.Base)
	if b.in.Kind(base) != types.KindArchetype {
		return types.NoTypeID
	}
	child, ok := b.in.ArchetypeNested(base, info.Assoc)
	if !ok {
		child = b.in.NewNestedArchetype(base, info.Assoc, b.sig.ConformanceRequirements(canonical))
	}
	b.contexts[canonical] = child
	return child
}

func (b *builder) protocol(name string) types.ProtocolID {
	return b.in.RegisterProtocol(b.names.Intern(name))
}

func (b *builder) parse(expr string) (types.TypeID, error) {
	return parseTypeExpr(expr, b.in, b.names, func(name string) (types.TypeID, bool) {
		id, ok := b.byName[name]
		return id, ok
	})
}

// WriteExample writes a starter fixture, used by the CLI init helper.
func WriteExample(path string) error {
	const example = `# Generic signature fixture.
[[params]]
name = "T"

[[params]]
name = "U"

[[requirements]]
kind = "conformance"
first = "T"
protocol = "Collection"

[[requirements]]
kind = "conformance"
first = "U"
protocol = "Collection"

[[requirements]]
kind = "conformance"
first = "T.Element"
protocol = "Equatable"

[[requirements]]
kind = "same_type"
first = "T.Element"
second = "U.Element"

[[substitutions]]
replacement = "[int]"
conforms = ["Collection"]

[[substitutions]]
replacement = "[int]"
conforms = ["Collection"]

[[substitutions]]
replacement = "int"
conforms = ["Equatable"]
`
	return os.WriteFile(path, []byte(example), 0o644)
}
