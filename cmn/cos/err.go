// Package cos provides common low-level types, errors and utilities shared
// by the transport, msg and cluster/sim packages.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	ratomic "sync/atomic"
	"syscall"

	"github.com/NVIDIA/deepmsg/cmn/debug"
	"github.com/NVIDIA/deepmsg/cmn/nlog"
	pkgerrors "github.com/pkg/errors"
)

type (
	// ErrLengthMismatch is returned by a Sink when a descriptor's field
	// count/order does not match what the Source wrote - the two sides
	// of a call must walk identical descriptors.
	ErrLengthMismatch struct {
		Component string
		Want, Got int
	}

	// ErrBufferOverflow is returned when a length-prefixed field (or a
	// whole message) would exceed a Transport's configured capacity.
	ErrBufferOverflow struct {
		Component string
		Want, Cap int
	}

	// ErrClosedStream is returned by a stream operation issued after
	// Close, and by a Transport used against its direction.
	ErrClosedStream struct {
		Stream string
	}

	// ErrNotFound is the generic "no such X" error.
	ErrNotFound struct {
		what string
	}

	// Errs aggregates up to maxErrs distinct errors, deduplicated by
	// message - for call sites (e.g. a broadcast fan-out) that must keep
	// going after a partial failure and report everything at the end.
	Errs struct {
		errs []error
		cnt  int64
		mu   sync.Mutex
	}
)

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("%s: descriptor length mismatch, want %d got %d", e.Component, e.Want, e.Got)
}

func (e *ErrBufferOverflow) Error() string {
	return fmt.Sprintf("%s: buffer overflow, want %d cap %d", e.Component, e.Want, e.Cap)
}

func (e *ErrClosedStream) Error() string { return e.Stream + ": use of closed stream" }

func NewErrNotFound(format string, a ...any) *ErrNotFound { return &ErrNotFound{fmt.Sprintf(format, a...)} }
func (e *ErrNotFound) Error() string                      { return e.what + " does not exist" }

func IsErrNotFound(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}

//
// Errs
//

const maxErrs = 4

func (e *Errs) Add(err error) {
	debug.Assert(err != nil)
	e.mu.Lock()
	for _, added := range e.errs {
		if added.Error() == err.Error() {
			e.mu.Unlock()
			return
		}
	}
	if len(e.errs) < maxErrs {
		e.errs = append(e.errs, err)
		ratomic.StoreInt64(&e.cnt, int64(len(e.errs)))
	}
	e.mu.Unlock()
}

func (e *Errs) Cnt() int { return int(ratomic.LoadInt64(&e.cnt)) }

func (e *Errs) JoinErr() (cnt int, err error) {
	if cnt = e.Cnt(); cnt > 0 {
		e.mu.Lock()
		err = errors.Join(e.errs...)
		e.mu.Unlock()
	}
	return
}

func (e *Errs) Error() (s string) {
	cnt := e.Cnt()
	if cnt == 0 {
		return
	}
	e.mu.Lock()
	err := e.errs[0]
	e.mu.Unlock()
	if cnt > 1 {
		return fmt.Sprintf("%v (and %d more error%s)", err, cnt-1, Plural(cnt-1))
	}
	return err.Error()
}

func Plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

//
// syscall/network classification, used by the fasthttp-backed endpoint to
// label a failed send as transient (it does not retry)
//

func IsErrConnectionRefused(err error) bool { return errors.Is(err, syscall.ECONNREFUSED) }
func IsErrConnectionReset(err error) bool   { return errors.Is(err, syscall.ECONNRESET) }
func IsErrBrokenPipe(err error) bool        { return errors.Is(err, syscall.EPIPE) }

func IsRetriableConnErr(err error) bool {
	return IsErrConnectionRefused(err) || IsErrConnectionReset(err) || IsErrBrokenPipe(err)
}

func isErrDNSLookup(err error) bool {
	_, ok := err.(*net.DNSError)
	return ok
}

func IsUnreachable(err error, status int) bool {
	return IsErrConnectionRefused(err) ||
		isErrDNSLookup(err) ||
		errors.Is(err, context.DeadlineExceeded) ||
		status == http.StatusRequestTimeout ||
		status == http.StatusServiceUnavailable ||
		status == http.StatusBadGateway
}

// WrapTraversal attaches the traversal context (which session, which
// direction, how far in) to an underlying I/O error, with a stack trace
// captured at the wrap site - used by msg.Message so an abort surfaces more
// than "EOF" once it reaches a log line or a non-zero process exit.
func WrapTraversal(err error, sessionID string, dir string, offset int) error {
	if err == nil {
		return nil
	}
	return pkgerrors.Wrapf(err, "traversal %s: session=%s offset=%d", dir, sessionID, offset)
}

//
// abnormal termination - used by cmd/graphtool on unrecoverable setup errors
//

const fatalPrefix = "FATAL ERROR: "

func Exitf(f string, a ...any) {
	_exit(fmt.Sprintf(fatalPrefix+f, a...))
}

func ExitLogf(f string, a ...any) {
	msg := fmt.Sprintf(fatalPrefix+f, a...)
	if flag.Parsed() {
		nlog.ErrorDepth(1, msg)
		nlog.Flush(true)
	}
	_exit(msg)
}

func _exit(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
