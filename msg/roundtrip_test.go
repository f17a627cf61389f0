/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package msg_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/NVIDIA/deepmsg/cluster/sim"
	"github.com/NVIDIA/deepmsg/memsys"
	"github.com/NVIDIA/deepmsg/msg"
	"github.com/NVIDIA/deepmsg/transport"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var mm *memsys.MMSA

var _ = BeforeSuite(func() {
	mm = (&memsys.MMSA{Name: "msg-test"}).Init(0)
	transport.Init(mm, nil)
})

var _ = Describe("buffered round trip", func() {
	It("preserves scalar and string fields", func() {
		in := &leaf{V: 42, S: "hello deepmsg"}
		sgl, err := msg.PackObjBuffered[leaf, *leaf](mm, in)
		Expect(err).NotTo(HaveOccurred())

		var out leaf
		Expect(msg.UnpackObjBuffered[leaf, *leaf](sgl, &out)).To(Succeed())
		Expect(out).To(Equal(*in))
		sgl.Free()
	})

	It("preserves pointer identity across two references to the same node", func() {
		shared := &node{ID: 7}
		in := &pair{A: shared, B: shared}
		sgl, err := msg.PackObjBuffered[pair, *pair](mm, in)
		Expect(err).NotTo(HaveOccurred())

		var out pair
		Expect(msg.UnpackObjBuffered[pair, *pair](sgl, &out)).To(Succeed())
		Expect(out.A).NotTo(BeNil())
		Expect(out.A).To(BeIdenticalTo(out.B))
		Expect(out.A.ID).To(Equal(int32(7)))
		sgl.Free()
	})

	It("preserves a self-referential cycle without infinite recursion", func() {
		n1 := &node{ID: 1}
		n2 := &node{ID: 2}
		n1.Next = n2
		n2.Next = n1

		sgl, err := msg.PackObjBuffered[node, *node](mm, n1)
		Expect(err).NotTo(HaveOccurred())

		var out node
		Expect(msg.UnpackObjBuffered[node, *node](sgl, &out)).To(Succeed())
		Expect(out.ID).To(Equal(int32(1)))
		Expect(out.Next.ID).To(Equal(int32(2)))
		Expect(out.Next.Next).To(BeIdenticalTo(&out))
		sgl.Free()
	})

	It("packs a nil pointer as nil on the other side", func() {
		in := &pair{A: &node{ID: 3}, B: nil}
		sgl, err := msg.PackObjBuffered[pair, *pair](mm, in)
		Expect(err).NotTo(HaveOccurred())

		var out pair
		Expect(msg.UnpackObjBuffered[pair, *pair](sgl, &out)).To(Succeed())
		Expect(out.A).NotTo(BeNil())
		Expect(out.B).To(BeNil())
		sgl.Free()
	})
})

var _ = Describe("size-only façade", func() {
	It("matches the number of bytes a buffered pack actually emits", func() {
		in := &leaf{V: 123, S: "measured"}
		n, err := msg.BufferSize[leaf, *leaf](in)
		Expect(err).NotTo(HaveOccurred())

		sgl, err := msg.PackObjBuffered[leaf, *leaf](mm, in)
		Expect(err).NotTo(HaveOccurred())
		Expect(sgl.Size()).To(Equal(n))
		sgl.Free()
	})
})

var _ = Describe("file façade", func() {
	It("round-trips a container of scalars through a file", func() {
		path := filepath.Join(os.TempDir(), "deepmsg-container-test.bin")
		defer os.Remove(path)

		in := []int32{1, 1, 2, 3, 5, 8, 13, 21}
		tr, err := transport.OpenFileWrite(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.PackContainer(tr, &in)).To(Succeed())

		var out []int32
		rtr, err := transport.OpenFileRead(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.UnpackContainer(rtr, &out)).To(Succeed())
		Expect(out).To(Equal(in))
	})

	It("round-trips an object through FileWrite/FileRead", func() {
		path := filepath.Join(os.TempDir(), "deepmsg-obj-test.bin")
		defer os.Remove(path)

		in := &leaf{V: 99, S: "on disk"}
		Expect(msg.FileWrite[leaf, *leaf](path, in)).To(Succeed())

		var out leaf
		Expect(msg.FileRead[leaf, *leaf](path, &out)).To(Succeed())
		Expect(out).To(Equal(*in))
	})
})

var _ = Describe("streaming façade over cluster/sim", func() {
	It("direct-sends an object from rank 0 to rank 1", func() {
		cl := sim.NewCluster(2)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		in := &leaf{V: 7, S: "streamed"}
		sessionID := transport.NewSessionID()

		errCh := make(chan error, 1)
		go func() { errCh <- msg.SendObj[leaf, *leaf](ctx, cl.Rank(0), 1, sessionID, in) }()

		var out leaf
		Expect(msg.RecvObj[leaf, *leaf](ctx, cl.Rank(1), sessionID, &out)).To(Succeed())
		Expect(<-errCh).NotTo(HaveOccurred())
		Expect(out).To(Equal(*in))
	})

	It("broadcasts from rank 0 to every peer", func() {
		const size = 3
		cl := sim.NewCluster(size)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		sessionID := transport.NewSessionID()

		in := &leaf{V: 55, S: "bcast"}
		errCh := make(chan error, size)
		go func() { errCh <- msg.BcastObjRoot[leaf, *leaf](ctx, cl.Rank(0), sessionID, in) }()

		outs := make([]leaf, size-1)
		for r := 1; r < size; r++ {
			r := r
			go func() {
				errCh <- msg.BcastObjPeer[leaf, *leaf](ctx, cl.Rank(r), sessionID, &outs[r-1])
			}()
		}
		for i := 0; i < size; i++ {
			Expect(<-errCh).NotTo(HaveOccurred())
		}
		for _, out := range outs {
			Expect(out).To(Equal(*in))
		}
	})
})
