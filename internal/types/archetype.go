package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"helix/internal/source"
)

// ArchetypeInfo stores metadata for one archetype. Parent and AssocName are
// set for nested archetypes (the stand-in for an associated type reached
// through Parent); primary archetypes leave both empty.
//
// nested records every associated-type route into a child archetype that has
// been declared on this archetype, including routes added by same-type
// constraints whose child has a different intrinsic parent.
type ArchetypeInfo struct {
	Name         source.StringID
	Parent       TypeID
	AssocName    source.StringID
	Conformances []ProtocolID

	nested map[source.StringID]TypeID
}

// NewArchetype mints a primary archetype. Every call produces a fresh
// identity; archetypes are never structurally merged.
func (in *Interner) NewArchetype(name source.StringID, conformances []ProtocolID) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	slot := in.appendArchetypeInfo(ArchetypeInfo{
		Name:         name,
		Conformances: slices.Clone(conformances),
	})
	return in.internRawLocked(Type{Kind: KindArchetype, Payload: slot})
}

// NewNestedArchetype mints the archetype standing in for parent's associated
// type assoc, and records the route on the parent.
func (in *Interner) NewNestedArchetype(parent TypeID, assoc source.StringID, conformances []ProtocolID) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.archetypeInfoLocked(parent) == nil {
		panic("types: nested archetype requires an archetype parent")
	}
	slot := in.appendArchetypeInfo(ArchetypeInfo{
		Name:         assoc,
		Parent:       parent,
		AssocName:    assoc,
		Conformances: slices.Clone(conformances),
	})
	id := in.internRawLocked(Type{Kind: KindArchetype, Payload: slot})
	// Re-fetch: the append above may have grown the side table.
	in.addNested(in.archetypeInfoLocked(parent), assoc, id)
	return id
}

// AddNestedRoute records that base's associated type assoc resolves to the
// existing archetype child. Used when a same-type constraint makes one
// archetype reachable through more than one base; child keeps its intrinsic
// parent.
func (in *Interner) AddNestedRoute(base TypeID, assoc source.StringID, child TypeID) {
	in.mu.Lock()
	defer in.mu.Unlock()
	binfo := in.archetypeInfoLocked(base)
	if binfo == nil || in.kindLocked(child) != KindArchetype {
		panic("types: nested route requires archetype endpoints")
	}
	in.addNested(binfo, assoc, child)
}

// ArchetypeInfo returns metadata for the provided archetype. The Name,
// Parent, AssocName and Conformances fields are frozen at registration.
func (in *Interner) ArchetypeInfo(id TypeID) (*ArchetypeInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	info := in.archetypeInfoLocked(id)
	if info == nil {
		return nil, false
	}
	frozen := ArchetypeInfo{
		Name:         info.Name,
		Parent:       info.Parent,
		AssocName:    info.AssocName,
		Conformances: info.Conformances,
	}
	return &frozen, true
}

// ArchetypeParent returns the intrinsic parent archetype, NoTypeID for
// primary archetypes.
func (in *Interner) ArchetypeParent(id TypeID) TypeID {
	in.mu.RLock()
	defer in.mu.RUnlock()
	info := in.archetypeInfoLocked(id)
	if info == nil {
		return NoTypeID
	}
	return info.Parent
}

// ArchetypeNested resolves base's associated type assoc to a child archetype.
func (in *Interner) ArchetypeNested(base TypeID, assoc source.StringID) (TypeID, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	info := in.archetypeInfoLocked(base)
	if info == nil {
		return NoTypeID, false
	}
	id, ok := info.nested[assoc]
	return id, ok
}

// ArchetypeConformances returns the protocols declared on the archetype.
func (in *Interner) ArchetypeConformances(id TypeID) []ProtocolID {
	in.mu.RLock()
	defer in.mu.RUnlock()
	info := in.archetypeInfoLocked(id)
	if info == nil {
		return nil
	}
	return slices.Clone(info.Conformances)
}

func (in *Interner) addNested(info *ArchetypeInfo, assoc source.StringID, child TypeID) {
	if info.nested == nil {
		info.nested = make(map[source.StringID]TypeID, 2)
	}
	info.nested[assoc] = child
}

func (in *Interner) archetypeInfoLocked(id TypeID) *ArchetypeInfo {
	if id == NoTypeID {
		return nil
	}
	tt, ok := in.lookupLocked(id)
	if !ok || tt.Kind != KindArchetype {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.archetypes) {
		return nil
	}
	return &in.archetypes[tt.Payload]
}

func (in *Interner) appendArchetypeInfo(info ArchetypeInfo) uint32 {
	if in.archetypes == nil {
		in.archetypes = append(in.archetypes, ArchetypeInfo{})
	}
	in.archetypes = append(in.archetypes, info)
	slot, err := safecast.Conv[uint32](len(in.archetypes) - 1)
	if err != nil {
		panic(fmt.Errorf("archetype info overflow: %w", err))
	}
	return slot
}
