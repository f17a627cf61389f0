// Package msg implements the deep-copy/serialization engine: a Message
// walks a graph of Go values through a type's Descriptor in one fixed
// declared field order, packing (Source) or unpacking (Sink) through
// whatever transport.Transport it was opened over.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package msg

import "github.com/NVIDIA/deepmsg/transport"

// Source and Sink wrap a *Message so a function can name in its signature
// which direction it expects. The direction itself is checked at run time:
// AsSource/AsSink panic on a Message of the other direction. Both embed
// *Message and so expose the same operations.
type (
	Source struct{ *Message }
	Sink   struct{ *Message }
)

func newSource(m *Message) *Source {
	if m.dir != transport.Pack {
		panic("msg: newSource on an Unpack-direction Message")
	}
	return &Source{m}
}

func newSink(m *Message) *Sink {
	if m.dir != transport.Unpack {
		panic("msg: newSink on a Pack-direction Message")
	}
	return &Sink{m}
}
