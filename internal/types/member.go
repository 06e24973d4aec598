package types

import (
	"fmt"

	"fortio.org/safecast"

	"helix/internal/source"
)

// DependentMemberInfo stores the projection of an associated type off a base
// type, e.g. T.Element = {Base: T, Assoc: "Element"}.
type DependentMemberInfo struct {
	Base  TypeID
	Assoc source.StringID
}

// MemberType interns the dependent member type base.assoc.
func (in *Interner) MemberType(base TypeID, assoc source.StringID) TypeID {
	info := DependentMemberInfo{Base: base, Assoc: assoc}
	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.memberIdx[info]; ok {
		return id
	}
	slot := in.appendMemberInfo(info)
	id := in.internRawLocked(Type{Kind: KindDependentMember, Payload: slot})
	if in.memberIdx == nil {
		in.memberIdx = make(map[DependentMemberInfo]TypeID, 8)
	}
	in.memberIdx[info] = id
	return id
}

// MemberInfo returns metadata for the provided dependent member type.
func (in *Interner) MemberInfo(id TypeID) (*DependentMemberInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	tt, ok := in.lookupLocked(id)
	if !ok || tt.Kind != KindDependentMember {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.members) {
		return nil, false
	}
	info := in.members[tt.Payload]
	return &info, true
}

func (in *Interner) appendMemberInfo(info DependentMemberInfo) uint32 {
	if in.members == nil {
		in.members = append(in.members, DependentMemberInfo{})
	}
	in.members = append(in.members, info)
	slot, err := safecast.Conv[uint32](len(in.members) - 1)
	if err != nil {
		panic(fmt.Errorf("member info overflow: %w", err))
	}
	return slot
}
