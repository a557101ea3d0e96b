package trace

import (
	"errors"
	"log"

	"github.com/berkayinceisci/chipyard-stream-buffers/analysis"
	"github.com/berkayinceisci/chipyard-stream-buffers/datarecording"
	"github.com/berkayinceisci/chipyard-stream-buffers/streambuffer"
)

// A PhaseResult summarizes one replayed phase.
type PhaseResult struct {
	Name             string
	Accesses         uint64
	Hits             uint64
	Misses           uint64
	Prefetches       uint64
	Dropped          uint64
	ConfirmedEntries int
}

// HitRate returns the fraction of the phase's accesses that hit.
func (r PhaseResult) HitRate() float64 {
	if r.Accesses == 0 {
		return 0
	}

	return float64(r.Hits) / float64(r.Accesses)
}

type accessRow struct {
	Seq           uint64
	Phase         string
	Addr          uint64
	Line          uint64
	IsWrite       bool
	Verdict       string
	NumPrefetches int
}

type prefetchRow struct {
	ID    string
	Phase string
	Seq   uint64
	Line  uint64
	Addr  uint64
}

type phaseRow struct {
	Phase            string
	Accesses         uint64
	Hits             uint64
	Misses           uint64
	Prefetches       uint64
	Dropped          uint64
	ConfirmedEntries int
}

// A Driver replays trace generators against a classifier, one phase at a
// time, with a flush at every phase boundary (the benchmarks' memory
// fences). Results are accumulated in the collector and optionally recorded
// to a database.
type Driver struct {
	classifier *streambuffer.Classifier
	collector  *analysis.Collector
	recorder   datarecording.DataRecorder
	logger     *log.Logger

	seq uint64
}

// NewDriver creates a driver. The collector is attached to the classifier
// as a hook.
func NewDriver(
	classifier *streambuffer.Classifier,
	collector *analysis.Collector,
) *Driver {
	classifier.AcceptHook(collector)

	return &Driver{
		classifier: classifier,
		collector:  collector,
	}
}

// WithRecorder makes the driver record per-access, per-prefetch, and
// per-phase rows to the given recorder.
func (d *Driver) WithRecorder(recorder datarecording.DataRecorder) *Driver {
	d.recorder = recorder

	recorder.CreateTable("access", accessRow{})
	recorder.CreateTable("prefetch", prefetchRow{})
	recorder.CreateTable("phase", phaseRow{})

	return d
}

// WithLogger makes the driver log a summary line per phase.
func (d *Driver) WithLogger(logger *log.Logger) *Driver {
	d.logger = logger
	return d
}

// RunPhase flushes the classifier and replays one generator through it.
// Malformed accesses are dropped and counted, as the model prescribes.
func (d *Driver) RunPhase(name string, gen Generator) PhaseResult {
	d.classifier.Flush()

	before := d.collector.Snapshot()
	dropped := uint64(0)

	for {
		access, ok := gen.Next()
		if !ok {
			break
		}

		d.seq++

		res, err := d.classifier.Classify(access.Addr, access.IsWrite)
		if err != nil {
			var inputErr *streambuffer.InputError
			if errors.As(err, &inputErr) {
				dropped++
				continue
			}

			panic(err)
		}

		d.record(name, access, res)
	}

	after := d.collector.Snapshot()

	result := PhaseResult{
		Name:             name,
		Accesses:         after.Accesses - before.Accesses,
		Hits:             after.Hits - before.Hits,
		Misses:           after.Misses - before.Misses,
		Prefetches:       after.Prefetches - before.Prefetches,
		Dropped:          dropped,
		ConfirmedEntries: d.countConfirmed(),
	}

	d.recordPhase(result)

	if d.logger != nil {
		d.logger.Printf("phase %s: %d accesses, %d hits (%.1f%%), %d prefetches",
			name, result.Accesses, result.Hits,
			result.HitRate()*100, result.Prefetches)
	}

	return result
}

func (d *Driver) countConfirmed() int {
	count := 0
	for _, e := range d.classifier.Entries() {
		if e.State == streambuffer.EntryConfirmed {
			count++
		}
	}

	return count
}

func (d *Driver) record(
	phase string,
	access Access,
	res streambuffer.Result,
) {
	if d.recorder == nil {
		return
	}

	line := access.Addr / d.classifier.Config().LineSize

	d.recorder.InsertData("access", accessRow{
		Seq:           d.seq,
		Phase:         phase,
		Addr:          access.Addr,
		Line:          line,
		IsWrite:       access.IsWrite,
		Verdict:       res.Verdict.String(),
		NumPrefetches: len(res.Prefetches),
	})

	for _, p := range res.Prefetches {
		d.recorder.InsertData("prefetch", prefetchRow{
			ID:    p.ID,
			Phase: phase,
			Seq:   d.seq,
			Line:  p.Line,
			Addr:  p.Addr,
		})
	}
}

func (d *Driver) recordPhase(result PhaseResult) {
	if d.recorder == nil {
		return
	}

	d.recorder.InsertData("phase", phaseRow{
		Phase:            result.Name,
		Accesses:         result.Accesses,
		Hits:             result.Hits,
		Misses:           result.Misses,
		Prefetches:       result.Prefetches,
		Dropped:          result.Dropped,
		ConfirmedEntries: result.ConfirmedEntries,
	})
}
