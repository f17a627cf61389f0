//go:build !debug

// Package debug provides no-op assertions for release builds; build with
// the "debug" tag to get the real, panicking versions (debug_on.go).
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package debug

func ON() bool { return false }

func Assert(_ bool, _ ...any)            {}
func Assertf(_ bool, _ string, _ ...any) {}
func AssertNoErr(_ error)                {}
func AssertFunc(_ func() bool, _ ...any) {}

func Func(_ func()) {}
