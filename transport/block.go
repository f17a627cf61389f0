/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package transport

import "encoding/binary"

// blockHdrSize is the fixed out-of-band header each chunked-stream block
// carries: a 4-byte payload length and a 4-byte flags word (bit 0: last
// block of the message). Block size itself is a construction parameter
// (see global.go's blockSize), never carried on the wire.
const blockHdrSize = 8

const lastFlag = uint32(1)

// block is one fixed-capacity chunk of a SendStream/RecvStream/BcastStream.
// roff/woff/done/last mirror the teacher's pdu bookkeeping.
type block struct {
	hdr     [blockHdrSize]byte
	payload []byte
	woff    int
	roff    int
	last    bool
	done    bool
}

func newBlock(payload []byte) *block { return &block{payload: payload} }

func (b *block) reset() {
	b.woff, b.roff = 0, 0
	b.last, b.done = false, false
}

func (b *block) writeAvail() int { return len(b.payload) - b.woff }
func (b *block) readAvail() int  { return b.woff - b.roff }

func (b *block) encodeHdr() {
	binary.LittleEndian.PutUint32(b.hdr[0:4], uint32(b.woff))
	var flags uint32
	if b.last {
		flags = lastFlag
	}
	binary.LittleEndian.PutUint32(b.hdr[4:8], flags)
}

func decodeBlockHdr(hdr []byte) (plen int, last bool) {
	plen = int(binary.LittleEndian.Uint32(hdr[0:4]))
	last = binary.LittleEndian.Uint32(hdr[4:8])&lastFlag != 0
	return
}
