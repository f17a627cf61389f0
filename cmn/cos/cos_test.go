/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cos_test

import (
	"errors"

	"github.com/NVIDIA/deepmsg/cmn/cos"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("session IDs", func() {
	BeforeEach(func() {
		cos.InitShortID(1)
	})

	It("generates alphanumeric-nice, valid session IDs", func() {
		id := cos.GenSessionID()
		Expect(cos.IsValidSessionID(id)).To(BeTrue())
		Expect(cos.IsAlphaNice(id)).To(BeTrue())
	})

	It("rejects IDs with leading or trailing separators", func() {
		Expect(cos.IsAlphaNice("-abc")).To(BeFalse())
		Expect(cos.IsAlphaNice("abc-")).To(BeFalse())
		Expect(cos.IsAlphaNice("ab-cd")).To(BeTrue())
	})
})

var _ = Describe("CryptoRandS", func() {
	It("returns the requested length, alphanumeric only", func() {
		s := cos.CryptoRandS(16)
		Expect(s).To(HaveLen(16))
		Expect(cos.IsAlphaNice(s)).To(BeTrue())
	})
})

var _ = Describe("UnsafeB/UnsafeS", func() {
	It("round-trips a string through []byte without copying semantics changing content", func() {
		s := "deep message payload"
		b := cos.UnsafeB(s)
		Expect(string(b)).To(Equal(s))
		Expect(cos.UnsafeS(b)).To(Equal(s))
	})

	It("treats an empty slice as an empty string", func() {
		Expect(cos.UnsafeS(nil)).To(Equal(""))
	})
})

var _ = Describe("Errs", func() {
	It("deduplicates identical error messages and joins distinct ones", func() {
		var errs cos.Errs
		errs.Add(errors.New("boom"))
		errs.Add(errors.New("boom"))
		errs.Add(errors.New("bang"))
		Expect(errs.Cnt()).To(Equal(2))

		_, joined := errs.JoinErr()
		Expect(joined).To(HaveOccurred())
		Expect(joined.Error()).To(ContainSubstring("boom"))
		Expect(joined.Error()).To(ContainSubstring("bang"))
	})

	It("caps itself at maxErrs and still reports a count via Error()", func() {
		var errs cos.Errs
		for i := 0; i < 10; i++ {
			errs.Add(errors.New(string(rune('a' + i))))
		}
		Expect(errs.Cnt()).To(BeNumerically("<=", 4))
		Expect(errs.Error()).NotTo(BeEmpty())
	})
})

var _ = Describe("typed errors", func() {
	It("formats ErrLengthMismatch/ErrBufferOverflow/ErrClosedStream/ErrNotFound", func() {
		Expect((&cos.ErrLengthMismatch{Component: "node", Want: 3, Got: 2}).Error()).To(ContainSubstring("node"))
		Expect((&cos.ErrBufferOverflow{Component: "block", Want: 100, Cap: 64}).Error()).To(ContainSubstring("overflow"))
		Expect((&cos.ErrClosedStream{Stream: "s1"}).Error()).To(ContainSubstring("s1"))

		err := cos.NewErrNotFound("rank %d", 3)
		Expect(cos.IsErrNotFound(err)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("does not exist"))
	})
})
