package driver

import (
	"crypto/sha256"

	"helix/internal/fixture"
	"helix/internal/generics"
	"helix/internal/ice"
	"helix/internal/types"
)

// Digest identifies a fixture by the sha256 of its raw content.
type Digest [sha256.Size]byte

// Snapshot is the flattened, render-stable record of one fixture's computed
// environment and substitution map. Everything is pre-rendered to strings so
// the snapshot survives re-interning across runs.
type Snapshot struct {
	Schema         uint16
	Params         []string
	DependentTypes []string
	Contexts       []ContextSnapshot
}

// ContextSnapshot records the context binding of one dependent type and,
// when a substitution map was computed, its substitution record.
type ContextSnapshot struct {
	Context      string
	Replacement  string
	Conformances []string
	Parents      []ParentSnapshot
}

// ParentSnapshot records one extra parent route added by a same-type
// requirement.
type ParentSnapshot struct {
	Parent string
	Assoc  string
}

// snapshotWorld flattens a materialized fixture. The substitution map is
// computed only when every dependent type resolves to an archetype; fixtures
// that fix parameters to concrete types still snapshot their bindings. Any
// tripped environment invariant is surfaced as the fixture's error rather
// than taking the whole batch down.
func snapshotWorld(w *fixture.World) (*Snapshot, error) {
	var snap *Snapshot
	if iceErr := ice.Catch(func() { snap = buildSnapshot(w) }); iceErr != nil {
		return nil, iceErr
	}
	return snap, nil
}

func buildSnapshot(w *fixture.World) *Snapshot {
	snap := &Snapshot{Schema: snapshotSchemaVersion}
	for _, p := range w.Params {
		snap.Params = append(snap.Params, w.Types.String(p, w.Names))
	}

	depTypes := w.Signature.AllDependentTypes()
	contexts := make([]types.TypeID, 0, len(depTypes))
	allArchetypes := true
	for _, depTy := range depTypes {
		snap.DependentTypes = append(snap.DependentTypes, w.Types.String(depTy, w.Names))
		arch := w.Env.MapTypeIntoContext(depTy)
		contexts = append(contexts, arch)
		allArchetypes = allArchetypes && w.Types.Kind(arch) == types.KindArchetype
	}

	var m *generics.SubstitutionMap
	if allArchetypes {
		list := w.Subs
		if !w.HasSubs {
			list = w.Env.ForwardingSubstitutions()
		}
		var err error
		m, err = w.Env.SubstitutionMapFor(list)
		if err != nil {
			panic(err)
		}
	}

	for _, arch := range contexts {
		entry := ContextSnapshot{Context: w.Types.String(arch, w.Names)}
		if m != nil {
			if replacement, ok := m.Replacement(arch); ok {
				entry.Replacement = w.Types.String(replacement, w.Names)
			}
			for _, ref := range m.Conformances(arch) {
				if info, ok := w.Types.ProtocolInfo(ref.Protocol); ok {
					entry.Conformances = append(entry.Conformances, w.Names.MustLookup(info.Name))
				}
			}
			for _, edge := range m.Parents(arch) {
				entry.Parents = append(entry.Parents, ParentSnapshot{
					Parent: w.Types.String(edge.Parent, w.Names),
					Assoc:  w.Names.MustLookup(edge.Assoc),
				})
			}
		}
		snap.Contexts = append(snap.Contexts, entry)
	}
	return snap
}
