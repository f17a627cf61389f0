// Package transport - process-wide defaults and the Init entry point,
// mirroring the teacher's global-struct-plus-Init convention.
/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package transport

import (
	"os"
	"strconv"
	"time"

	"github.com/NVIDIA/deepmsg/cmn/cos"
	"github.com/NVIDIA/deepmsg/cmn/nlog"
	"github.com/NVIDIA/deepmsg/memsys"
	"github.com/NVIDIA/deepmsg/stats"
	"github.com/NVIDIA/deepmsg/sys"
)

// chunked-stream defaults
const (
	dfltBlockSize    = 256
	dfltIdleTeardown = 4 * time.Second
)

// dfltBurstNum is how many blocks can queue up behind sendLoop's one
// in-flight send before SendStream.Write starts applying backpressure,
// scaled to the host's core count the same way SetMaxProcs scales
// GOMAXPROCS - more cores means more concurrent streams can each keep a
// deeper queue filled without starving sendLoop.
var dfltBurstNum = 16 * sys.NumCPU()

type global struct {
	mm      *memsys.MMSA
	tracker stats.Tracker
}

var g global

// Init wires the package-wide slab allocator and stats tracker and seeds
// the session-ID generator. Call once at process startup, before opening
// any stream.
func Init(mm *memsys.MMSA, tracker stats.Tracker) {
	g.mm = mm
	g.tracker = tracker
	cos.InitShortID(uint64(time.Now().UnixNano()))
}

func blockSize() int {
	if a := os.Getenv("DEEPMSG_BLOCK_SIZE"); a != "" {
		if n, err := strconv.Atoi(a); err == nil && n > 0 {
			return n
		}
		nlog.Warningf("ignoring malformed DEEPMSG_BLOCK_SIZE=%q", a)
	}
	return dfltBlockSize
}

func burst() int {
	if a := os.Getenv("DEEPMSG_STREAM_BURST_NUM"); a != "" {
		if n, err := strconv.Atoi(a); err == nil && n > 0 {
			return n
		}
		nlog.Warningf("ignoring malformed DEEPMSG_STREAM_BURST_NUM=%q", a)
	}
	return dfltBurstNum
}

func idleTeardown() time.Duration {
	if a := os.Getenv("DEEPMSG_STREAM_IDLE_TEARDOWN"); a != "" {
		if d, err := time.ParseDuration(a); err == nil {
			return d
		}
		nlog.Warningf("ignoring malformed DEEPMSG_STREAM_IDLE_TEARDOWN=%q", a)
	}
	return dfltIdleTeardown
}
