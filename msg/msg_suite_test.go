// Package msg_test exercises the round-trip, identity-preservation and
// cycle-preservation properties of the msg package.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package msg_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestMsg(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "msg Suite")
}
