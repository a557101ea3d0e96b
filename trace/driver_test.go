package trace

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/berkayinceisci/chipyard-stream-buffers/analysis"
	"github.com/berkayinceisci/chipyard-stream-buffers/streambuffer"
)

var _ = Describe("Driver", func() {
	var (
		mockCtrl   *gomock.Controller
		classifier *streambuffer.Classifier
		collector  *analysis.Collector
		driver     *Driver
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())

		classifier = streambuffer.MakeBuilder().
			WithNumEntries(4).
			WithPrefetchAhead(2).
			WithTrainThreshold(2).
			WithLineSize(64).
			MustBuild("Classifier")
		collector = analysis.NewCollector()
		driver = NewDriver(classifier, collector)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	feedLines := func(gen *MockGenerator, lines []uint64) {
		i := 0
		gen.EXPECT().Next().DoAndReturn(func() (Access, bool) {
			if i >= len(lines) {
				return Access{}, false
			}

			a := Access{Addr: lines[i] * 64}
			i++

			return a, true
		}).Times(len(lines) + 1)
	}

	sequentialLines := func(gen *MockGenerator, n uint64) {
		lines := make([]uint64, n)
		for i := range lines {
			lines[i] = uint64(i)
		}

		feedLines(gen, lines)
	}

	It("should replay a generator and summarize the phase", func() {
		gen := NewMockGenerator(mockCtrl)
		sequentialLines(gen, 6)

		result := driver.RunPhase("warmup", gen)

		Expect(result.Name).To(Equal("warmup"))
		Expect(result.Accesses).To(Equal(uint64(6)))
		Expect(result.Misses).To(Equal(uint64(3)))
		Expect(result.Hits).To(Equal(uint64(3)))
		Expect(result.Prefetches).To(Equal(uint64(5)))
		Expect(result.ConfirmedEntries).To(Equal(1))
		Expect(result.HitRate()).To(BeNumerically("~", 0.5))
	})

	It("should flush the classifier between phases", func() {
		gen1 := NewMockGenerator(mockCtrl)
		sequentialLines(gen1, 6)
		gen2 := NewMockGenerator(mockCtrl)
		sequentialLines(gen2, 6)

		first := driver.RunPhase("a", gen1)
		second := driver.RunPhase("b", gen2)

		// The second phase warms up from scratch.
		Expect(second.Hits).To(Equal(first.Hits))
		Expect(second.Misses).To(Equal(first.Misses))
	})

	It("should drop malformed accesses and keep going", func() {
		gen := NewMockGenerator(mockCtrl)
		accesses := []Access{
			{Addr: 0},
			{Addr: streambuffer.MaxAddr + 1},
			{Addr: 64},
		}
		i := 0
		gen.EXPECT().Next().DoAndReturn(func() (Access, bool) {
			if i >= len(accesses) {
				return Access{}, false
			}

			a := accesses[i]
			i++

			return a, true
		}).Times(len(accesses) + 1)

		result := driver.RunPhase("bad", gen)

		Expect(result.Dropped).To(Equal(uint64(1)))
		Expect(result.Accesses).To(Equal(uint64(2)))
	})
})
