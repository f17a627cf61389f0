// Field-level packing primitives. Each one is direction-symmetric: called
// with a Pack-mode Message it serializes *v, called with an Unpack-mode
// Message it deserializes into *v - so a Descriptor's Declare reads the
// same whichever way the call is going.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package msg

import (
	"encoding/binary"
	"unsafe"

	"github.com/NVIDIA/deepmsg/cmn/cos"
	"github.com/NVIDIA/deepmsg/transport"
)

// Scalar is any fixed-width value a wire scalar field may hold.
type Scalar interface {
	~bool | ~int8 | ~uint8 | ~int16 | ~uint16 |
		~int32 | ~uint32 | ~int64 | ~uint64 |
		~int | ~uint | ~float32 | ~float64
}

// Var packs or unpacks one fixed-width scalar field by aliasing its raw
// memory - scalars travel in the host's native byte order, not normalized
// to a wire-independent form (see DESIGN.md).
func Var[T Scalar](m *Message, v *T) error {
	buf := unsafe.Slice((*byte)(unsafe.Pointer(v)), int(unsafe.Sizeof(*v)))
	if m.dir == transport.Pack {
		return writeFull(m, buf)
	}
	return readFull(m, buf)
}

// String packs or unpacks a length-prefixed UTF-8 string field.
func String(m *Message, s *string) error {
	if m.dir == transport.Pack {
		b := cos.UnsafeB(*s)
		if err := writeLen(m, len(b)); err != nil {
			return err
		}
		return writeFull(m, b)
	}
	n, err := readLen(m)
	if err != nil {
		return err
	}
	if n == 0 {
		*s = ""
		return nil
	}
	b := make([]byte, n)
	if err := readFull(m, b); err != nil {
		return err
	}
	*s = string(b)
	return nil
}

// Bytes packs or unpacks a length-prefixed opaque byte-string field.
func Bytes(m *Message, b *[]byte) error {
	if m.dir == transport.Pack {
		if err := writeLen(m, len(*b)); err != nil {
			return err
		}
		return writeFull(m, *b)
	}
	n, err := readLen(m)
	if err != nil {
		return err
	}
	*b = make([]byte, n)
	return readFull(m, *b)
}

// Embed packs or unpacks a nested composite value stored inline (not
// behind a pointer) - its Declare runs directly against the same Message.
func Embed[T any, PT descriptorPtr[T]](m *Message, v *T) error {
	return PT(v).Declare(m)
}

// UniquePtr packs or unpacks a non-shared owning pointer: root shape
// `ptr := addr_word [len_i32 payload]` where a nil pointer writes only a
// zero addr_word and no payload. No identity tracking: a unique pointer is
// never expected to alias another reference within the same call.
func UniquePtr[T any, PT descriptorPtr[T]](m *Message, pp **T) error {
	if m.dir == transport.Pack {
		if *pp == nil {
			return writeFull(m, make([]byte, 8))
		}
		if err := writeFull(m, nonZeroAddrWord()); err != nil {
			return err
		}
		if err := writeLen(m, 1); err != nil {
			return err
		}
		return PT(*pp).Declare(m)
	}
	var addrw [8]byte
	if err := readFull(m, addrw[:]); err != nil {
		return err
	}
	if binary.LittleEndian.Uint64(addrw[:]) == 0 {
		*pp = nil
		return nil
	}
	n, err := readLen(m)
	if err != nil {
		return err
	}
	if n != 1 {
		return &cos.ErrLengthMismatch{Component: "msg.UniquePtr", Want: 1, Got: n}
	}
	v := new(T)
	*pp = v
	return PT(v).Declare(m)
}

func nonZeroAddrWord() []byte {
	b := make([]byte, 8)
	b[0] = 1
	return b
}

// SharedPtr packs or unpacks a potentially-aliased pointer, consulting the
// Message's IdentityTable so a second reference to the same Source address
// is written/read as a back-reference instead of a duplicate payload, and
// a cycle resolves instead of recursing forever.
func SharedPtr[T any, PT descriptorPtr[T]](m *Message, pp **T) error {
	if m.dir == transport.Pack {
		if *pp == nil {
			return writeFull(m, make([]byte, 8))
		}
		addr := uintptr(unsafe.Pointer(*pp))
		key, first := m.idents.MarkSrc(addr)
		if err := writeFull(m, keyBytes(key)); err != nil {
			return err
		}
		if !first {
			return nil // back-reference: Sink already has (or is allocating) this object
		}
		return PT(*pp).Declare(m)
	}

	var kb [8]byte
	if err := readFull(m, kb[:]); err != nil {
		return err
	}
	key := identityKey(binary.LittleEndian.Uint64(kb[:]))
	if key == 0 {
		*pp = nil
		return nil
	}
	if existing, ok := m.idents.Lookup(key); ok {
		if v, ok := existing.(*T); ok {
			*pp = v
			return nil
		}
	}
	v := new(T)
	*pp = v
	m.idents.Register(key, v) // before Declare: resolves self/back-edges
	return PT(v).Declare(m)
}

func keyBytes(k identityKey) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(k))
	return b[:]
}

// seedRoot anchors a top-level object in the Message's IdentityTable before
// its Declare recurses, using the same registration protocol as SharedPtr.
// Without this, a back-edge or self-edge that targets the root itself (the
// root is never reached through a SharedPtr field, only through the facade
// call that starts the traversal) would find no entry in the table and
// deserialize as a brand-new, duplicate object instead of resolving back to
// the root. The root's address crosses the wire as an opaque key - data,
// never dereferenced - purely so the sink can seed its first mapping.
func seedRoot[T any, PT descriptorPtr[T]](m *Message, v *T) error {
	if m.dir == transport.Pack {
		addr := uintptr(unsafe.Pointer(v))
		key, _ := m.idents.MarkSrc(addr)
		return writeFull(m, keyBytes(key))
	}
	var kb [8]byte
	if err := readFull(m, kb[:]); err != nil {
		return err
	}
	key := identityKey(binary.LittleEndian.Uint64(kb[:]))
	m.idents.Register(key, v)
	return nil
}
