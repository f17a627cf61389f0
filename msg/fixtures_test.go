/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package msg_test

import "github.com/NVIDIA/deepmsg/msg"

type leaf struct {
	V int32
	S string
}

func (l *leaf) Declare(m *msg.Message) error {
	if err := msg.Var(m, &l.V); err != nil {
		return err
	}
	return msg.String(m, &l.S)
}

// node is self-referential via a SharedPtr edge, used for both the
// shared-identity and the cycle-preservation properties.
type node struct {
	ID   int32
	Next *node
}

func (n *node) Declare(m *msg.Message) error {
	if err := msg.Var(m, &n.ID); err != nil {
		return err
	}
	return msg.SharedPtr[node, *node](m, &n.Next)
}

// pair holds two references that may or may not alias the same node.
type pair struct {
	A, B *node
}

func (p *pair) Declare(m *msg.Message) error {
	if err := msg.SharedPtr[node, *node](m, &p.A); err != nil {
		return err
	}
	return msg.SharedPtr[node, *node](m, &p.B)
}
