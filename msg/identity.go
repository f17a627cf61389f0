// IdentityTable maps a Source's pointer addresses to the Sink's freshly
// allocated counterparts for one top-level Message call, so a graph with
// shared sub-objects or cycles round-trips without duplication or infinite
// recursion. It is fresh per call - no entry survives past the top-level
// Pack/Unpack that created it.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package msg

import (
	"encoding/binary"
	"sync"

	"github.com/OneOfOne/xxhash"
	cuckoo "github.com/seiflotfy/cuckoofilter"
)

// identityKey hashes the FULL pointer address (not a log2(size)-shifted
// address, which collapses distinct small objects onto the same bucket).
// See DESIGN.md for why this differs from the original implementation.
type identityKey uint64

type IdentityTable struct {
	mu   sync.Mutex
	seen map[identityKey]any // Pack: addr -> struct{} marker; Unpack: wire id -> *T
	cf   *cuckoo.Filter      // fast "definitely new" pre-check, avoids a map probe for most addresses
}

func NewIdentityTable() *IdentityTable {
	return &IdentityTable{
		seen: make(map[identityKey]any, 64),
		cf:   cuckoo.NewFilter(1024),
	}
}

func keyOf(addr uintptr) identityKey {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(addr))
	return identityKey(xxhash.Checksum64(b[:]))
}

// MarkSrc records a Source-side pointer as seen. first is true the first time
// this address is marked (the caller must then pack the full payload);
// false on repeat visits (the caller packs only the reference).
func (t *IdentityTable) MarkSrc(addr uintptr) (key identityKey, first bool) {
	key = keyOf(addr)
	if !t.cf.Lookup(b8(key)) {
		t.cf.Insert(b8(key))
		t.mu.Lock()
		t.seen[key] = struct{}{}
		t.mu.Unlock()
		return key, true
	}
	t.mu.Lock()
	_, already := t.seen[key]
	if !already {
		t.seen[key] = struct{}{}
	}
	t.mu.Unlock()
	return key, !already
}

// Lookup returns the destination value previously registered for key, if
// any - called on the Sink side before allocating, to detect a repeat
// reference to an object already unpacked earlier in this same call.
func (t *IdentityTable) Lookup(key identityKey) (any, bool) {
	t.mu.Lock()
	v, ok := t.seen[key]
	t.mu.Unlock()
	return v, ok
}

// Register associates key with the freshly allocated destination value.
// Must be called before recursing into the pointee's fields, so a
// self-referential or mutually-referential graph resolves correctly.
func (t *IdentityTable) Register(key identityKey, dst any) {
	t.mu.Lock()
	t.seen[key] = dst
	t.mu.Unlock()
}

func b8(k identityKey) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(k))
	return b[:]
}
