//go:build debug

// Package debug provides no-op assertions for release builds; build with
// the "debug" tag to get the real, panicking versions (this file).
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package debug

import "fmt"

func ON() bool { return true }

func Assert(cond bool, args ...any) {
	if cond {
		return
	}
	panic(fmt.Sprintln(append([]any{"assertion failed:"}, args...)...))
}

func Assertf(cond bool, format string, args ...any) {
	if cond {
		return
	}
	panic("assertion failed: " + fmt.Sprintf(format, args...))
}

func AssertNoErr(err error) {
	if err == nil {
		return
	}
	panic("assertion failed: " + err.Error())
}

func AssertFunc(f func() bool, args ...any) {
	Assert(f(), args...)
}

// Func runs f only in debug builds - for invariant checks too expensive
// to leave compiled into production binaries.
func Func(f func()) { f() }
