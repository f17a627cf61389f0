// Container packing: root shape `container := len_i32 elem[len_i32]` -
// length-prefixed, elements packed in order, no padding between them.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package msg

import "github.com/NVIDIA/deepmsg/transport"

// Slice packs or unpacks a contiguous []T of scalar elements.
func Slice[T Scalar](m *Message, s *[]T) error {
	if m.dir == transport.Pack {
		if err := writeLen(m, len(*s)); err != nil {
			return err
		}
		for i := range *s {
			if err := Var(m, &(*s)[i]); err != nil {
				return err
			}
		}
		return nil
	}
	n, err := readLen(m)
	if err != nil {
		return err
	}
	*s = make([]T, n)
	for i := range *s {
		if err := Var(m, &(*s)[i]); err != nil {
			return err
		}
	}
	return nil
}

// SliceOf packs or unpacks a contiguous []T of composite elements declared
// inline (not behind per-element pointers).
func SliceOf[T any, PT descriptorPtr[T]](m *Message, s *[]T) error {
	if m.dir == transport.Pack {
		if err := writeLen(m, len(*s)); err != nil {
			return err
		}
		for i := range *s {
			if err := Embed[T, PT](m, &(*s)[i]); err != nil {
				return err
			}
		}
		return nil
	}
	n, err := readLen(m)
	if err != nil {
		return err
	}
	*s = make([]T, n)
	for i := range *s {
		if err := Embed[T, PT](m, &(*s)[i]); err != nil {
			return err
		}
	}
	return nil
}

// SharedPtrSlice packs or unpacks a container of shared pointers - e.g. a
// graph node's outgoing edges - each element going through the
// IdentityTable so a node reachable from two edges (or a cycle) is
// allocated once.
func SharedPtrSlice[T any, PT descriptorPtr[T]](m *Message, s *[]*T) error {
	if m.dir == transport.Pack {
		if err := writeLen(m, len(*s)); err != nil {
			return err
		}
		for i := range *s {
			if err := SharedPtr[T, PT](m, &(*s)[i]); err != nil {
				return err
			}
		}
		return nil
	}
	n, err := readLen(m)
	if err != nil {
		return err
	}
	*s = make([]*T, n)
	for i := range *s {
		if err := SharedPtr[T, PT](m, &(*s)[i]); err != nil {
			return err
		}
	}
	return nil
}

// SList is a generic singly-linked list node, packed as a container of its
// values followed by re-linking on the Sink side - the wire format never
// carries next-pointers, only the flattened sequence.
type SList[T any] struct {
	Val  T
	Next *SList[T]
}

// SListPtr packs or unpacks a whole linked list reachable from *head.
func SListPtr[T any, PT descriptorPtr[T]](m *Message, head **SList[T]) error {
	if m.dir == transport.Pack {
		var vals []T
		for n := *head; n != nil; n = n.Next {
			vals = append(vals, n.Val)
		}
		return SliceOf[T, PT](m, &vals)
	}
	var vals []T
	if err := SliceOf[T, PT](m, &vals); err != nil {
		return err
	}
	var firstNode, lastNode *SList[T]
	for i := range vals {
		n := &SList[T]{Val: vals[i]}
		if firstNode == nil {
			firstNode = n
		} else {
			lastNode.Next = n
		}
		lastNode = n
	}
	*head = firstNode
	return nil
}
