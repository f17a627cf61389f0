// Package memsys provides slab-allocated byte buffers and a scatter-gather
// list (SGL) built on top of them - used by the buffered façade (materialize
// a whole message before one send) and by the chunked-stream transports
// (each outgoing/incoming block is a slab-backed buffer).
/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package memsys

import (
	"sync"
	"time"

	"github.com/NVIDIA/deepmsg/cmn/debug"
	"github.com/NVIDIA/deepmsg/cmn/nlog"
)

const (
	MinSlabSize = 4 * 1024
	MaxSlabSize = 1 * 1024 * 1024
	numSlabs    = 9 // 4K .. 1M, doubling
)

// MMSA ("memory manager, slab allocator") owns one family of power-of-two
// slabs. The zero value is not usable; call Init first.
type MMSA struct {
	Name        string
	TimeIval    time.Duration
	MinFree     int64
	MinPctTotal int64

	slabs [numSlabs]*slab
	stopv chan struct{}
}

type slab struct {
	pool sync.Pool
	size int
}

// Init wires up the slab pools. debugLvl is accepted for call-site symmetry
// with the teacher's MMSA.Init(debugLvl int) and currently unused.
func (mm *MMSA) Init(int) *MMSA {
	size := MinSlabSize
	for i := range mm.slabs {
		s := &slab{size: size}
		s.pool.New = func() any { return make([]byte, s.size) }
		mm.slabs[i] = s
		size *= 2
	}
	mm.stopv = make(chan struct{})
	nlog.Infof("memsys %q: ready (%d-%d)", mm.Name, MinSlabSize, MaxSlabSize)
	return mm
}

// Terminate stops background housekeeping, if any was started.
func (mm *MMSA) Terminate(unlinkDirs bool) {
	debug.Assert(!unlinkDirs) // no on-disk spillover in this implementation
	if mm.stopv != nil {
		close(mm.stopv)
	}
}

func (mm *MMSA) slabFor(size int) *slab {
	for _, s := range mm.slabs {
		if size <= s.size {
			return s
		}
	}
	return nil // larger than MaxSlabSize: caller allocates directly
}

// Alloc returns a buffer with length == size, backed by the smallest slab
// class that fits (rounded up), or a one-off allocation above MaxSlabSize.
func (mm *MMSA) Alloc(size int) []byte {
	debug.Assert(size >= 0)
	if s := mm.slabFor(size); s != nil {
		buf := s.pool.Get().([]byte)
		return buf[:size]
	}
	return make([]byte, size)
}

// Free returns buf to its slab class, if it came from one. Buffers larger
// than MaxSlabSize are left for the GC.
func (mm *MMSA) Free(buf []byte) {
	c := cap(buf)
	for _, s := range mm.slabs {
		if c == s.size {
			//nolint:staticcheck // intentional: recycle full-capacity slice
			s.pool.Put(buf[:c])
			return
		}
	}
}
