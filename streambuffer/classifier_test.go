package streambuffer_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/berkayinceisci/chipyard-stream-buffers/streambuffer"
)

const lineSize = 64

func lineAddr(line uint64) uint64 {
	return line * lineSize
}

// classifyLines feeds line-aligned accesses and collects the verdicts and
// the issued prefetch lines, in order.
func classifyLines(
	c *streambuffer.Classifier,
	lines []uint64,
) ([]streambuffer.Verdict, []uint64) {
	var verdicts []streambuffer.Verdict
	var prefetchLines []uint64

	for _, l := range lines {
		res, err := c.Classify(lineAddr(l), false)
		Expect(err).ToNot(HaveOccurred())

		verdicts = append(verdicts, res.Verdict)
		for _, p := range res.Prefetches {
			prefetchLines = append(prefetchLines, p.Line)
		}
	}

	return verdicts, prefetchLines
}

func confirmedCount(c *streambuffer.Classifier) int {
	count := 0
	for _, e := range c.Entries() {
		if e.State == streambuffer.EntryConfirmed {
			count++
		}
	}

	return count
}

// lcgLines produces the benchmark's pseudo-random line sequence: LCG-picked
// indices into an 8192-element array of 8-byte elements.
func lcgLines(seed uint32, count int) []uint64 {
	state := seed
	lines := make([]uint64, count)

	for i := range lines {
		state = state*1103515245 + 12345
		index := ((state >> 16) & 0x7FFF) % 8192
		lines[i] = uint64(index) * 8 / lineSize
	}

	return lines
}

var _ = Describe("Classifier", func() {
	var builder streambuffer.Builder

	BeforeEach(func() {
		builder = streambuffer.MakeBuilder().
			WithNumEntries(4).
			WithPrefetchAhead(2).
			WithTrainThreshold(2).
			WithLineSize(lineSize)
	})

	Context("sequential warm-up", func() {
		It("should miss the first threshold+1 accesses, then always hit", func() {
			c := builder.MustBuild("C")

			verdicts, prefetches := classifyLines(c,
				[]uint64{0, 1, 2, 3, 4, 5, 6, 7})

			Expect(verdicts).To(Equal([]streambuffer.Verdict{
				streambuffer.Miss, streambuffer.Miss, streambuffer.Miss,
				streambuffer.Hit, streambuffer.Hit, streambuffer.Hit,
				streambuffer.Hit, streambuffer.Hit,
			}))
			Expect(prefetches).To(Equal([]uint64{3, 4, 5, 6, 7, 8, 9}))
		})

		It("should train on writes exactly like reads", func() {
			c := builder.MustBuild("C")

			for line := uint64(0); line < 3; line++ {
				res, err := c.Classify(lineAddr(line), true)
				Expect(err).ToNot(HaveOccurred())
				Expect(res.Verdict).To(Equal(streambuffer.Miss))
			}

			res, err := c.Classify(lineAddr(3), true)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Verdict).To(Equal(streambuffer.Hit))
		})

		It("should hit a repeat of the line a training stream just fetched", func() {
			c := builder.MustBuild("C")

			verdicts, _ := classifyLines(c, []uint64{10, 10})

			Expect(verdicts).To(Equal([]streambuffer.Verdict{
				streambuffer.Miss, streambuffer.Hit}))
		})
	})

	Context("stride gating", func() {
		It("should never confirm a strided stream when detection is off", func() {
			c := builder.MustBuild("C")

			var lines []uint64
			for i := uint64(0); i < 40; i++ {
				lines = append(lines, i*8)
			}

			verdicts, prefetches := classifyLines(c, lines)

			for _, v := range verdicts {
				Expect(v).To(Equal(streambuffer.Miss))
			}
			Expect(prefetches).To(BeEmpty())
			Expect(confirmedCount(c)).To(Equal(0))
		})
	})

	Context("stride detection", func() {
		BeforeEach(func() {
			builder = builder.WithStrideDetection(true)
		})

		It("should confirm a positive stride after exactly threshold continuations", func() {
			c := builder.MustBuild("C")

			verdicts, prefetches := classifyLines(c,
				[]uint64{0, 3, 6, 9, 12})

			Expect(verdicts).To(Equal([]streambuffer.Verdict{
				streambuffer.Miss, streambuffer.Miss, streambuffer.Miss,
				streambuffer.Hit, streambuffer.Hit,
			}))
			Expect(prefetches).To(Equal([]uint64{9, 12, 15, 18}))
		})

		It("should confirm a negative stride", func() {
			c := builder.MustBuild("C")

			verdicts, prefetches := classifyLines(c,
				[]uint64{100, 98, 96, 94, 92})

			Expect(verdicts).To(Equal([]streambuffer.Verdict{
				streambuffer.Miss, streambuffer.Miss, streambuffer.Miss,
				streambuffer.Hit, streambuffer.Hit,
			}))
			Expect(prefetches).To(Equal([]uint64{94, 92, 90, 88}))
		})

		It("should abandon a candidate stride that is not reproduced", func() {
			c := builder.MustBuild("C")

			// Delta 3 then delta 5: the second continuation mismatches and
			// allocates a new entry instead of training further.
			verdicts, _ := classifyLines(c, []uint64{0, 3, 8, 11, 14})

			Expect(verdicts[2]).To(Equal(streambuffer.Miss))
			Expect(confirmedCount(c)).To(Equal(1))
		})
	})

	Context("random accesses", func() {
		It("should not confirm any entry on an LCG trace", func() {
			c := builder.WithStrideDetection(true).MustBuild("C")

			// nEntries * trainThreshold accesses, and then some.
			verdicts, _ := classifyLines(c, lcgLines(12345, 64))

			for _, v := range verdicts[:8] {
				Expect(v).To(Equal(streambuffer.Miss))
			}
			Expect(confirmedCount(c)).To(Equal(0))
		})

		It("should never confirm a sequence with no repeating delta", func() {
			c := builder.WithStrideDetection(true).MustBuild("C")

			var lines []uint64
			for i := uint64(0); i < 32; i++ {
				lines = append(lines, i*i)
			}

			verdicts, _ := classifyLines(c, lines)

			Expect(verdicts[0]).To(Equal(streambuffer.Miss))
			Expect(confirmedCount(c)).To(Equal(0))
		})
	})

	Context("eviction", func() {
		It("should allocate into the lowest-index invalid entry first", func() {
			c := builder.MustBuild("C")

			classifyLines(c, []uint64{1000})

			entries := c.Entries()
			Expect(entries[0].State).To(Equal(streambuffer.EntryTraining))
			Expect(entries[0].BaseLine).To(Equal(uint64(1000)))
			Expect(entries[1].State).To(Equal(streambuffer.EntryInvalid))
		})

		It("should evict in recency order", func() {
			c := streambuffer.MakeBuilder().
				WithNumEntries(2).
				WithTrainThreshold(10).
				WithLineSize(lineSize).
				MustBuild("C")

			classifyLines(c, []uint64{0, 1000, 2000, 3000})

			entries := c.Entries()
			Expect(entries[0].BaseLine).To(Equal(uint64(2000)))
			Expect(entries[1].BaseLine).To(Equal(uint64(3000)))
		})
	})

	Context("prefetch idempotency", func() {
		It("should not re-issue a line the frontier already covers", func() {
			c := builder.MustBuild("C")

			classifyLines(c, []uint64{0, 1, 2, 3})

			res, err := c.Classify(lineAddr(3), false)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Verdict).To(Equal(streambuffer.Hit))
			Expect(res.Prefetches).To(BeEmpty())
		})
	})

	Context("determinism", func() {
		It("should produce identical output for identical traces", func() {
			trace := append(lcgLines(12345, 40), 0, 1, 2, 3, 4, 5)

			c1 := builder.MustBuild("C1")
			c2 := builder.MustBuild("C2")

			v1, p1 := classifyLines(c1, trace)
			v2, p2 := classifyLines(c2, trace)

			Expect(v1).To(Equal(v2))
			Expect(p1).To(Equal(p2))
		})
	})

	Context("minimal training threshold", func() {
		It("should confirm on the second access of a stream", func() {
			c := builder.WithTrainThreshold(1).MustBuild("C")

			verdicts, prefetches := classifyLines(c, []uint64{0, 1, 2})

			Expect(verdicts).To(Equal([]streambuffer.Verdict{
				streambuffer.Miss, streambuffer.Miss, streambuffer.Hit,
			}))
			Expect(prefetches).To(Equal([]uint64{2, 3, 4}))
			Expect(confirmedCount(c)).To(Equal(1))
		})
	})

	Context("flush", func() {
		It("should reset every entry and behave like a fresh table", func() {
			c := builder.MustBuild("C")

			classifyLines(c, []uint64{0, 1, 2, 3})
			Expect(confirmedCount(c)).To(Equal(1))

			c.Flush()

			for _, e := range c.Entries() {
				Expect(e.State).To(Equal(streambuffer.EntryInvalid))
			}

			verdicts, _ := classifyLines(c, []uint64{4})
			Expect(verdicts[0]).To(Equal(streambuffer.Miss))
		})
	})

	Context("malformed input", func() {
		It("should reject an out-of-range address without touching the table", func() {
			c := builder.MustBuild("C")

			classifyLines(c, []uint64{0, 1})
			before := c.Entries()

			_, err := c.Classify(streambuffer.MaxAddr+1, false)

			var inputErr *streambuffer.InputError
			Expect(errors.As(err, &inputErr)).To(BeTrue())
			Expect(c.Entries()).To(Equal(before))

			// Classification continues on the next access.
			verdicts, _ := classifyLines(c, []uint64{2, 3})
			Expect(verdicts).To(Equal([]streambuffer.Verdict{
				streambuffer.Miss, streambuffer.Hit}))
		})
	})

	Context("zero prefetch ahead", func() {
		It("should confirm streams but issue no prefetches", func() {
			c := builder.WithPrefetchAhead(0).MustBuild("C")

			verdicts, prefetches := classifyLines(c, []uint64{0, 1, 2, 3, 4})

			Expect(verdicts[3]).To(Equal(streambuffer.Hit))
			Expect(prefetches).To(BeEmpty())
			Expect(confirmedCount(c)).To(Equal(1))
		})
	})
})
