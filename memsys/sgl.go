/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package memsys

import "io"

// SGL is a scatter-gather list of fixed-size slabs presented as one
// io.ReadWriter. The buffered façade writes an entire packed message into
// an SGL and returns it to the caller, who can then transmit it in one
// piece instead of one send per field.
type SGL struct {
	mm     *MMSA
	slabSz int
	bufs   [][]byte
	woff   int // write offset within the last buf
	roff   int // read offset, across consumed bufs
	rbuf   int // index of buf currently being read
	size   int64
}

func (mm *MMSA) NewSGL(immediateSize int64) *SGL {
	slabSz := MinSlabSize
	for slabSz < MaxSlabSize && int64(slabSz) < immediateSize {
		slabSz *= 2
	}
	sgl := &SGL{mm: mm, slabSz: slabSz}
	if immediateSize > 0 {
		sgl.grow()
	}
	return sgl
}

func (z *SGL) grow() {
	z.bufs = append(z.bufs, z.mm.Alloc(z.slabSz))
	z.woff = 0
}

func (z *SGL) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		if len(z.bufs) == 0 || z.woff == z.slabSz {
			z.grow()
		}
		cur := z.bufs[len(z.bufs)-1]
		n := copy(cur[z.woff:], p)
		z.woff += n
		written += n
		z.size += int64(n)
		p = p[n:]
	}
	return written, nil
}

func (z *SGL) Read(p []byte) (int, error) {
	if z.rbuf >= len(z.bufs) {
		return 0, io.EOF
	}
	read := 0
	for len(p) > 0 {
		if z.rbuf >= len(z.bufs) {
			break
		}
		cur := z.bufs[z.rbuf]
		hi := z.slabSz
		if z.rbuf == len(z.bufs)-1 {
			hi = z.woff
		}
		if z.roff >= hi {
			z.rbuf++
			z.roff = 0
			continue
		}
		n := copy(p, cur[z.roff:hi])
		z.roff += n
		read += n
		p = p[n:]
	}
	if read == 0 {
		return 0, io.EOF
	}
	return read, nil
}

func (z *SGL) Size() int64 { return z.size }

func (z *SGL) Reset() {
	z.rbuf, z.roff = 0, 0
}

// Free returns every slab to the owning MMSA. The SGL must not be used
// afterward.
func (z *SGL) Free() {
	for _, b := range z.bufs {
		z.mm.Free(b)
	}
	z.bufs = nil
}
