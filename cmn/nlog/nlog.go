// Package nlog is a small buffering/rotating logger used throughout this
// module in place of the standard log package - severity-leveled,
// double-buffered so a writer never blocks on disk I/O. Queued buffers
// reach the log file only when Flush is called; nothing flushes them in
// the background.
/*
 * Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NVIDIA/deepmsg/cmn/mono"
)

const (
	fixedSize   = 64 * 1024
	maxLineSize = 2 * 1024
)

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevErr
)

type nlog struct {
	file           *os.File
	pw, buf1, buf2 *fixed
	line           fixed
	toFlush        []*fixed
	last           atomic.Int64
	written        atomic.Int64
	sev            severity
	oob            atomic.Bool
	erred          atomic.Bool
	mw             sync.Mutex
}

var nlogs = [...]*nlog{
	sevInfo: newNlog(sevInfo),
	sevWarn: newNlog(sevWarn),
	sevErr:  newNlog(sevErr),
}

func newNlog(sev severity) *nlog {
	n := &nlog{
		sev:     sev,
		buf1:    &fixed{buf: make([]byte, fixedSize)},
		buf2:    &fixed{buf: make([]byte, fixedSize)},
		line:    fixed{buf: make([]byte, maxLineSize)},
		toFlush: make([]*fixed, 0, 4),
	}
	n.pw = n.buf1
	n.buf1 = nil
	return n
}

func log(sev severity, depth int, format string, args ...any) {
	switch {
	case !flag.Parsed() || toStderr:
		var fb fixed
		fb.buf = make([]byte, maxLineSize)
		printLine(sev, depth+3, format, &fb, args...)
		fb.flush(os.Stderr)
	default:
		if alsoToStderr || sev >= sevWarn {
			var fb fixed
			fb.buf = make([]byte, maxLineSize)
			printLine(sev, depth+1, format, &fb, args...)
			if alsoToStderr || sev >= sevErr {
				os.Stderr.Write(fb.buf[:fb.woff])
			}
			if sev >= sevWarn {
				errLog := nlogs[sevErr]
				errLog.printRaw(fb.buf[:fb.woff])
			}
			nlogs[sevInfo].printRaw(fb.buf[:fb.woff])
			return
		}
		nlogs[sevInfo].printf(sev, depth, format, args...)
	}
}

func printLine(sev severity, depth int, format string, fb *fixed, args ...any) {
	sprintf(sev, depth, format, fb)
	if format == "" {
		fmt.Fprintln(fb, args...)
	} else {
		fmt.Fprintf(fb, format, args...)
		fb.eol()
	}
}

func (n *nlog) printf(sev severity, depth int, format string, args ...any) {
	n.mw.Lock()
	n.line.reset()
	printLine(sev, depth+2, format, &n.line, args...)
	n.write(&n.line)
	n.mw.Unlock()
}

func (n *nlog) printRaw(b []byte) {
	n.mw.Lock()
	n.line.reset()
	n.line.Write(b)
	n.write(&n.line)
	n.mw.Unlock()
}

// under mw-lock
func (n *nlog) write(line *fixed) {
	buf := line.buf[:line.woff]
	n.pw.Write(buf)
	if n.pw.avail() > maxLineSize {
		return
	}
	n.toFlush = append(n.toFlush, n.pw)
	n.oob.Store(true)
	n.get()
}

// under mw-lock: swap in a spare buffer for the one just queued to flush
func (n *nlog) get() {
	switch {
	case n.buf1 != nil:
		n.pw, n.buf1 = n.buf1, nil
	case n.buf2 != nil:
		n.pw, n.buf2 = n.buf2, nil
	default:
		n.pw = &fixed{buf: make([]byte, fixedSize)}
	}
}

func (n *nlog) put(pw *fixed) {
	n.mw.Lock()
	switch {
	case n.buf1 == nil:
		n.buf1 = pw
	case n.buf2 == nil:
		n.buf2 = pw
	}
	n.mw.Unlock()
}

func (n *nlog) since(now int64) time.Duration { return time.Duration(now - n.last.Load()) }

func (n *nlog) flush() {
	for {
		n.mw.Lock()
		if len(n.toFlush) == 0 {
			n.oob.Store(false)
			n.mw.Unlock()
			return
		}
		pw := n.toFlush[0]
		n.toFlush = n.toFlush[1:]
		n.mw.Unlock()
		n.do(pw)
	}
}

func (n *nlog) do(pw *fixed) {
	if n.file == nil {
		if f, err := fcreate(sevText[n.sev], time.Now()); err == nil {
			n.file = f
		} else {
			n.erred.Store(true)
		}
	}
	if n.erred.Load() || n.file == nil {
		os.Stderr.Write(pw.buf[:pw.woff])
	} else {
		num, err := pw.flush(n.file)
		if err != nil {
			n.erred.Store(true)
		}
		n.written.Add(int64(num))
		n.last.Store(mono.NanoTime())
	}
	pw.reset()
	n.put(pw)
	if n.written.Load() >= MaxSize {
		if n.file != nil {
			n.file.Close()
			n.file = nil
		}
		n.written.Store(0)
		n.erred.Store(false)
	}
}

func formatHdr(s severity, depth int, fb *fixed) {
	const char = "IWE"
	_, fn, ln, ok := runtime.Caller(depth)
	now := time.Now()
	fb.writeByte(char[s])
	fb.writeByte(' ')
	fb.writeString(now.Format("15:04:05.000000"))
	fb.writeByte(' ')
	if !ok {
		return
	}
	if idx := strings.LastIndexByte(fn, filepath.Separator); idx > 0 {
		fn = fn[idx+1:]
	}
	fb.writeString(fn)
	fb.writeByte(':')
	fb.writeString(strconv.Itoa(ln))
	fb.writeByte(' ')
}

func sprintf(sev severity, depth int, _ string, fb *fixed) {
	formatHdr(sev, depth+3, fb)
}
