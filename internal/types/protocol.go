package types

import (
	"fmt"

	"fortio.org/safecast"

	"helix/internal/source"
)

// ProtocolID identifies a protocol declaration.
type ProtocolID uint32

// NoProtocolID marks the absence of a protocol.
const NoProtocolID ProtocolID = 0

// ProtocolInfo stores metadata for a protocol declaration.
type ProtocolInfo struct {
	Name source.StringID
}

// ConformanceRef is a reference to a conformance of some type to a protocol.
// Abstract references point at the conformance as declared on the protocol's
// own declaration, without resolving a concrete witness.
type ConformanceRef struct {
	Protocol ProtocolID
	Abstract bool
}

// AbstractConformance builds the declared-on-protocol reference used by
// pass-through bindings.
func AbstractConformance(p ProtocolID) ConformanceRef {
	return ConformanceRef{Protocol: p, Abstract: true}
}

// RegisterProtocol interns a protocol declaration by name.
func (in *Interner) RegisterProtocol(name source.StringID) ProtocolID {
	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.protoIndex[uint32(name)]; ok {
		return id
	}
	if in.protocols == nil {
		in.protocols = append(in.protocols, ProtocolInfo{})
	}
	in.protocols = append(in.protocols, ProtocolInfo{Name: name})
	slot, err := safecast.Conv[uint32](len(in.protocols) - 1)
	if err != nil {
		panic(fmt.Errorf("protocol index overflow: %w", err))
	}
	id := ProtocolID(slot)
	if in.protoIndex == nil {
		in.protoIndex = make(map[uint32]ProtocolID, 8)
	}
	in.protoIndex[uint32(name)] = id
	return id
}

// ProtocolInfo returns metadata for the provided protocol.
func (in *Interner) ProtocolInfo(id ProtocolID) (*ProtocolInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id == NoProtocolID || int(id) >= len(in.protocols) {
		return nil, false
	}
	info := in.protocols[id]
	return &info, true
}
