// Façade entry points: every root shape (object, pointer, pointer+length,
// container) has a direct variant that packs straight onto the given
// transport. The object root shape also has a buffered variant
// (materializes into a memsys.SGL first) and - Source side only - a
// size-only variant that measures what a direct Pack would emit without
// writing anything. The pointer, pointer+length and container root shapes
// have no buffered or size-only variant.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package msg

import (
	"github.com/NVIDIA/deepmsg/memsys"
	"github.com/NVIDIA/deepmsg/transport"
)

// PackObj serializes v directly onto tr.
func PackObj[T any, PT descriptorPtr[T]](tr transport.Transport, v *T) error {
	m := NewMessage(tr)
	if err := seedRoot[T, PT](m, v); err != nil {
		return err
	}
	if err := PT(v).Declare(m); err != nil {
		return err
	}
	return m.Close()
}

// UnpackObj deserializes into v (already allocated by the caller) from tr.
func UnpackObj[T any, PT descriptorPtr[T]](tr transport.Transport, v *T) error {
	m := NewMessage(tr)
	if err := seedRoot[T, PT](m, v); err != nil {
		return err
	}
	if err := PT(v).Declare(m); err != nil {
		return err
	}
	return m.Close()
}

// PackPtr serializes the object *pp points to (root shape `ptr`).
func PackPtr[T any, PT descriptorPtr[T]](tr transport.Transport, pp **T) error {
	m := NewMessage(tr)
	if err := UniquePtr[T, PT](m, pp); err != nil {
		return err
	}
	return m.Close()
}

// UnpackPtr deserializes a `ptr` root, allocating *pp if the wire value is
// non-nil.
func UnpackPtr[T any, PT descriptorPtr[T]](tr transport.Transport, pp **T) error {
	m := NewMessage(tr)
	if err := UniquePtr[T, PT](m, pp); err != nil {
		return err
	}
	return m.Close()
}

// PackPtrLen serializes a `ptr_len` root: a pointer to the first of n
// contiguous composite elements.
func PackPtrLen[T any, PT descriptorPtr[T]](tr transport.Transport, pp *[]T) error {
	m := NewMessage(tr)
	if err := SliceOf[T, PT](m, pp); err != nil {
		return err
	}
	return m.Close()
}

// UnpackPtrLen deserializes a `ptr_len` root into a freshly allocated
// slice.
func UnpackPtrLen[T any, PT descriptorPtr[T]](tr transport.Transport, pp *[]T) error {
	m := NewMessage(tr)
	if err := SliceOf[T, PT](m, pp); err != nil {
		return err
	}
	return m.Close()
}

// PackContainer serializes a `container` root of scalar elements.
func PackContainer[T Scalar](tr transport.Transport, s *[]T) error {
	m := NewMessage(tr)
	if err := Slice(m, s); err != nil {
		return err
	}
	return m.Close()
}

// UnpackContainer deserializes a `container` root of scalar elements.
func UnpackContainer[T Scalar](tr transport.Transport, s *[]T) error {
	m := NewMessage(tr)
	if err := Slice(m, s); err != nil {
		return err
	}
	return m.Close()
}

//
// buffered façade: materialize, then one send
//

// PackObjBuffered packs v into an in-memory SGL and returns it still open
// for the caller to transmit in one piece.
func PackObjBuffered[T any, PT descriptorPtr[T]](mm *memsys.MMSA, v *T) (*memsys.SGL, error) {
	tr := transport.NewMemTransport(mm, transport.Pack, 0)
	m := NewMessage(tr)
	if err := seedRoot[T, PT](m, v); err != nil {
		tr.Close()
		return nil, err
	}
	if err := PT(v).Declare(m); err != nil {
		tr.Close()
		return nil, err
	}
	if err := tr.Flush(); err != nil {
		tr.Close()
		return nil, err
	}
	return tr.SGL(), nil
}

// UnpackObjBuffered deserializes v from an SGL already holding a whole
// packed message (e.g. one produced by PackObjBuffered).
func UnpackObjBuffered[T any, PT descriptorPtr[T]](sgl *memsys.SGL, v *T) error {
	tr := transport.NewMemTransportFrom(sgl)
	m := NewMessage(tr)
	if err := seedRoot[T, PT](m, v); err != nil {
		return err
	}
	return PT(v).Declare(m)
}

//
// size-only façade
//

// BufferSize returns the number of bytes PackObj would emit for v, without
// writing anything - the backend for pre-sizing a fixed buffer or a
// progress bar.
func BufferSize[T any, PT descriptorPtr[T]](v *T) (int64, error) {
	nt := transport.NewNullTransport()
	m := NewMessage(nt)
	if err := seedRoot[T, PT](m, v); err != nil {
		return 0, err
	}
	if err := PT(v).Declare(m); err != nil {
		return 0, err
	}
	return nt.Size(), nil
}

//
// file façade
//

func FileWrite[T any, PT descriptorPtr[T]](path string, v *T) error {
	tr, err := transport.OpenFileWrite(path)
	if err != nil {
		return err
	}
	m := NewMessage(tr)
	if err := seedRoot[T, PT](m, v); err != nil {
		tr.Close()
		return err
	}
	if err := PT(v).Declare(m); err != nil {
		tr.Close()
		return err
	}
	return m.Close()
}

func FileRead[T any, PT descriptorPtr[T]](path string, v *T) error {
	tr, err := transport.OpenFileRead(path)
	if err != nil {
		return err
	}
	m := NewMessage(tr)
	if err := seedRoot[T, PT](m, v); err != nil {
		tr.Close()
		return err
	}
	if err := PT(v).Declare(m); err != nil {
		tr.Close()
		return err
	}
	return m.Close()
}
