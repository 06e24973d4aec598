package types

import (
	"fmt"

	"fortio.org/safecast"

	"helix/internal/source"
)

// AliasInfo stores metadata for a sugared alias spelling.
type AliasInfo struct {
	Name   source.StringID
	Target TypeID
}

// RegisterAlias interns a named alias wrapping target. Distinct names over
// the same target are distinct spellings; canonicalization strips them all.
func (in *Interner) RegisterAlias(name source.StringID, target TypeID) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindAlias || tt.Payload == 0 || int(tt.Payload) >= len(in.aliases) {
			continue
		}
		info := in.aliases[tt.Payload]
		if info.Name == name && info.Target == target {
			return id
		}
	}
	slot := in.appendAliasInfo(AliasInfo{Name: name, Target: target})
	return in.internRawLocked(Type{Kind: KindAlias, Elem: target, Payload: slot})
}

// AliasInfo returns metadata for the provided alias TypeID.
func (in *Interner) AliasInfo(id TypeID) (*AliasInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	tt, ok := in.lookupLocked(id)
	if !ok || tt.Kind != KindAlias {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.aliases) {
		return nil, false
	}
	info := in.aliases[tt.Payload]
	return &info, true
}

func (in *Interner) appendAliasInfo(info AliasInfo) uint32 {
	if in.aliases == nil {
		in.aliases = append(in.aliases, AliasInfo{})
	}
	in.aliases = append(in.aliases, info)
	slot, err := safecast.Conv[uint32](len(in.aliases) - 1)
	if err != nil {
		panic(fmt.Errorf("alias info overflow: %w", err))
	}
	return slot
}
