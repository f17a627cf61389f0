/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package transport

import "github.com/NVIDIA/deepmsg/memsys"

// MemTransport packs into (or unpacks from) a memsys.SGL - the backend for
// the buffered façade: materialize the whole message in memory, then the
// caller transmits the SGL in one piece.
type MemTransport struct {
	baseDir
	sgl *memsys.SGL
}

func NewMemTransport(mm *memsys.MMSA, dir Direction, immediateSize int64) *MemTransport {
	return &MemTransport{baseDir: baseDir{dir: dir}, sgl: mm.NewSGL(immediateSize)}
}

// NewMemTransportFrom wraps an already-filled SGL for unpacking, e.g. one
// received whole over an Endpoint.
func NewMemTransportFrom(sgl *memsys.SGL) *MemTransport {
	sgl.Reset()
	return &MemTransport{baseDir: baseDir{dir: Unpack}, sgl: sgl}
}

func (t *MemTransport) Write(p []byte) (int, error) {
	if t.dir != Pack {
		return 0, errWrongDirection
	}
	return t.sgl.Write(p)
}

func (t *MemTransport) Read(p []byte) (int, error) {
	if t.dir != Unpack {
		return 0, errWrongDirection
	}
	return t.sgl.Read(p)
}

func (t *MemTransport) Flush() error { return nil }
func (t *MemTransport) Close() error { t.sgl.Free(); return nil }

func (t *MemTransport) SGL() *memsys.SGL { return t.sgl }
func (t *MemTransport) Size() int64      { return t.sgl.Size() }
