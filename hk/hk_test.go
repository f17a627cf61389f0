/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package hk_test

import (
	"time"

	"github.com/NVIDIA/deepmsg/hk"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Housekeeper", func() {
	It("fires a registered cleanup func on its requested interval", func() {
		fired := make(chan struct{}, 4)
		hk.Reg("ticker", func() time.Duration {
			fired <- struct{}{}
			return 20 * time.Millisecond
		}, 20*time.Millisecond)
		defer hk.Unreg("ticker")

		Eventually(fired, 2*time.Second).Should(Receive())
		Eventually(fired, 2*time.Second).Should(Receive())
	})

	It("stops firing once unregistered", func() {
		fired := make(chan struct{}, 16)
		hk.Reg("once-ish", func() time.Duration {
			fired <- struct{}{}
			return 10 * time.Millisecond
		}, 10*time.Millisecond)

		Eventually(fired, time.Second).Should(Receive())
		hk.Unreg("once-ish")

		for len(fired) > 0 {
			<-fired
		}
		Consistently(fired, 200*time.Millisecond).ShouldNot(Receive())
	})
})
