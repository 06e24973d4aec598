package types

import (
	"fmt"

	"fortio.org/safecast"

	"helix/internal/source"
)

// TypeParamInfo stores metadata about a generic type parameter. Identity is
// the (Depth, Index) pair; Name is display sugar only and does not take part
// in canonical equality.
type TypeParamInfo struct {
	Name  source.StringID
	Depth uint32
	Index uint32
}

// RegisterTypeParam interns a generic parameter descriptor. The same
// (name, depth, index) triple always yields the same TypeID; the same
// (depth, index) under a different name yields a distinct sugared spelling
// that canonicalizes to the nameless form.
func (in *Interner) RegisterTypeParam(name source.StringID, depth, index uint32) TypeID {
	info := TypeParamInfo{Name: name, Depth: depth, Index: index}
	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.paramIndex[info]; ok {
		return id
	}
	slot := in.appendTypeParamInfo(info)
	id := in.internRawLocked(Type{Kind: KindGenericParam, Payload: slot})
	if in.paramIndex == nil {
		in.paramIndex = make(map[TypeParamInfo]TypeID, 8)
	}
	in.paramIndex[info] = id
	return id
}

// CanonicalParam returns the alias-free spelling for a (depth, index) pair.
func (in *Interner) CanonicalParam(depth, index uint32) TypeID {
	return in.RegisterTypeParam(source.NoStringID, depth, index)
}

// TypeParamInfo returns metadata for the provided generic parameter.
func (in *Interner) TypeParamInfo(id TypeID) (*TypeParamInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	tt, ok := in.lookupLocked(id)
	if !ok || tt.Kind != KindGenericParam {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.params) {
		return nil, false
	}
	info := in.params[tt.Payload]
	return &info, true
}

func (in *Interner) appendTypeParamInfo(info TypeParamInfo) uint32 {
	if in.params == nil {
		in.params = append(in.params, TypeParamInfo{})
	}
	in.params = append(in.params, info)
	slot, err := safecast.Conv[uint32](len(in.params) - 1)
	if err != nil {
		panic(fmt.Errorf("type param index overflow: %w", err))
	}
	return slot
}
