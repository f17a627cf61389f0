/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package msg

import (
	"encoding/binary"
	"fmt"

	"github.com/NVIDIA/deepmsg/cmn/cos"
	"github.com/NVIDIA/deepmsg/transport"
)

// Message walks a value graph through a type's Descriptor, in the exact
// field order the descriptor declares, packing into or unpacking from a
// transport.Transport. One Message, and the IdentityTable it owns, lives
// for exactly one top-level call.
type Message struct {
	tr     transport.Transport
	dir    transport.Direction
	idents *IdentityTable
	offset int64
}

// NewMessage wraps tr, taking the Message's direction from tr.Direction().
func NewMessage(tr transport.Transport) *Message {
	return &Message{tr: tr, dir: tr.Direction(), idents: NewIdentityTable()}
}

func (m *Message) AsSource() *Source { return newSource(m) }
func (m *Message) AsSink() *Sink     { return newSink(m) }

func (m *Message) Transport() transport.Transport { return m.tr }

// Close flushes and releases the underlying transport. Call once the
// top-level descriptor walk is complete.
func (m *Message) Close() error {
	if err := m.tr.Flush(); err != nil {
		m.tr.Close()
		return err
	}
	return m.tr.Close()
}

// Descriptor is implemented by every packable composite type. Declare must
// enumerate the type's fields in the same fixed order on every call - the
// wire format has no field tags or names, only position, so a descriptor
// that branches on field order between Pack and Unpack produces garbage.
type Descriptor interface {
	Declare(m *Message) error
}

// descriptorPtr is the "pointer type constraint" idiom: it lets PackPtr /
// UniquePtr / SharedPtr work generically over *T while requiring *T (not T) to
// implement Descriptor, matching how these types are actually used
// (always behind a pointer, so Declare can mutate the pointee on Unpack).
type descriptorPtr[T any] interface {
	*T
	Descriptor
}

func writeFull(m *Message, p []byte) error {
	n, err := m.tr.Write(p)
	if err != nil {
		return cos.WrapTraversal(err, "", "pack", int(m.offset))
	}
	if n != len(p) {
		return &cos.ErrBufferOverflow{Component: "msg.Message", Want: len(p), Cap: n}
	}
	m.offset += int64(n)
	return nil
}

func readFull(m *Message, p []byte) error {
	read := 0
	for read < len(p) {
		n, err := m.tr.Read(p[read:])
		if n == 0 && err != nil {
			return cos.WrapTraversal(err, "", "unpack", int(m.offset)+read)
		}
		read += n
		if n == 0 {
			return fmt.Errorf("msg: short read, got %d of %d bytes", read, len(p))
		}
	}
	m.offset += int64(read)
	return nil
}

func writeLen(m *Message, n int) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(n))
	return writeFull(m, b[:])
}

func readLen(m *Message) (int, error) {
	var b [4]byte
	if err := readFull(m, b[:]); err != nil {
		return 0, err
	}
	return int(int32(binary.LittleEndian.Uint32(b[:]))), nil
}
