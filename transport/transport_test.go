/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package transport_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/NVIDIA/deepmsg/cluster/sim"
	"github.com/NVIDIA/deepmsg/memsys"
	"github.com/NVIDIA/deepmsg/transport"
)

func TestMain(m *testing.M) {
	mm := (&memsys.MMSA{Name: "transport-test"}).Init(0)
	transport.Init(mm, nil)
	os.Exit(m.Run())
}

func TestNullTransportCountsWithoutStoring(t *testing.T) {
	nt := transport.NewNullTransport()
	p := []byte("the quick brown fox")
	n, err := nt.Write(p)
	if err != nil || n != len(p) {
		t.Fatalf("Write() = %d, %v; want %d, nil", n, err, len(p))
	}
	if nt.Size() != int64(len(p)) {
		t.Fatalf("Size() = %d, want %d", nt.Size(), len(p))
	}
}

func TestMemTransportRoundTrip(t *testing.T) {
	mm := (&memsys.MMSA{Name: "t"}).Init(0)
	wt := transport.NewMemTransport(mm, transport.Pack, 0)
	want := bytes.Repeat([]byte("0123456789"), 5000) // spans multiple slabs
	if _, err := wt.Write(want); err != nil {
		t.Fatal(err)
	}
	sgl := wt.SGL()

	rt := transport.NewMemTransportFrom(sgl)
	got := make([]byte, len(want))
	if _, err := readFullT(rt, got); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Fatal("round-tripped bytes differ")
	}
	rt.Close()
}

func readFullT(r transport.Transport, p []byte) (int, error) {
	read := 0
	for read < len(p) {
		n, err := r.Read(p[read:])
		read += n
		if err != nil {
			return read, err
		}
		if n == 0 {
			break
		}
	}
	return read, nil
}

func TestFileTransportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.bin")
	wt, err := transport.OpenFileWrite(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte("deep copy this")
	if _, err := wt.Write(want); err != nil {
		t.Fatal(err)
	}
	if err := wt.Close(); err != nil {
		t.Fatal(err)
	}

	rt, err := transport.OpenFileRead(path)
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close()
	got := make([]byte, len(want))
	if _, err := readFullT(rt, got); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSendRecvStreamChunksAcrossMultipleBlocks(t *testing.T) {
	old := os.Getenv("DEEPMSG_BLOCK_SIZE")
	os.Setenv("DEEPMSG_BLOCK_SIZE", "64")
	defer os.Setenv("DEEPMSG_BLOCK_SIZE", old)

	cl := sim.NewCluster(2)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sessionID := transport.NewSessionID()
	want := bytes.Repeat([]byte("x"), 1000) // several 64-byte blocks

	errCh := make(chan error, 1)
	go func() {
		ss := transport.OpenSendStream(ctx, cl.Rank(0), 1, sessionID)
		if _, err := ss.Write(want); err != nil {
			errCh <- err
			return
		}
		errCh <- ss.Close()
	}()

	rs := transport.OpenRecvStream(ctx, cl.Rank(1), sessionID)
	got := make([]byte, len(want))
	if _, err := readFullT(rs, got); err != nil {
		t.Fatal(err)
	}
	if err := <-errCh; err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Fatal("streamed bytes differ")
	}
}
