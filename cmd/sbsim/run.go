package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/berkayinceisci/chipyard-stream-buffers/analysis"
	"github.com/berkayinceisci/chipyard-stream-buffers/benchmarks/streammem"
	"github.com/berkayinceisci/chipyard-stream-buffers/datarecording"
	"github.com/berkayinceisci/chipyard-stream-buffers/monitoring"
	"github.com/berkayinceisci/chipyard-stream-buffers/streambuffer"
	"github.com/berkayinceisci/chipyard-stream-buffers/trace"
)

// arrayBase is where the benchmark array lives. The original benchmarks run
// out of RISC-V DRAM, which starts at 0x8000_0000.
const arrayBase = uint64(0x8000_0000)

var (
	flagEntries      int
	flagAhead        int
	flagDetectStride bool
	flagThreshold    int
	flagLineSize     uint64
	flagBench        string
	flagElems        int
	flagIterations   int
	flagDB           string
	flagMonitor      bool
	flagPort         int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay benchmark phases against the prefetcher model.",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	runCmd.Flags().IntVar(&flagEntries, "entries", 4,
		"number of stream buffer entries")
	runCmd.Flags().IntVar(&flagAhead, "ahead", 2,
		"number of lines to prefetch ahead")
	runCmd.Flags().BoolVar(&flagDetectStride, "detect-stride", false,
		"enable stride detection")
	runCmd.Flags().IntVar(&flagThreshold, "threshold", 2,
		"training threshold")
	runCmd.Flags().Uint64Var(&flagLineSize, "line-size", 64,
		"cache line size in bytes")
	runCmd.Flags().StringVar(&flagBench, "bench", "all",
		"benchmark phase to run, or all")
	runCmd.Flags().IntVar(&flagElems, "elems", streammem.DefaultElems,
		"number of array elements")
	runCmd.Flags().IntVar(&flagIterations, "iterations",
		streammem.DefaultIterations, "iterations per phase")
	runCmd.Flags().StringVar(&flagDB, "db", "",
		"record per-access results to this SQLite database")
	runCmd.Flags().BoolVar(&flagMonitor, "monitor", false,
		"serve live statistics over HTTP")
	runCmd.Flags().IntVar(&flagPort, "port", 0,
		"monitoring port, 0 for a random free port")

	rootCmd.AddCommand(runCmd)
}

func run() {
	classifier, err := streambuffer.MakeBuilder().
		WithNumEntries(flagEntries).
		WithPrefetchAhead(flagAhead).
		WithStrideDetection(flagDetectStride).
		WithTrainThreshold(flagThreshold).
		WithLineSize(flagLineSize).
		Build("SBSim")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	collector := analysis.NewCollector()
	driver := trace.NewDriver(classifier, collector)

	var recorder datarecording.DataRecorder
	if flagDB != "" {
		recorder = datarecording.New(flagDB)
		driver.WithRecorder(recorder)
	}

	if flagMonitor {
		monitor := monitoring.NewMonitor().WithPortNumber(flagPort)
		monitor.RegisterClassifier(classifier)
		monitor.RegisterCollector(collector)
		monitor.StartServer()
	}

	suite := streammem.NewSuite(trace.Geometry{
		Base:     arrayBase,
		Elems:    flagElems,
		ElemSize: streammem.DefaultElemSize,
	}, flagIterations)

	results := runPhases(driver, suite)
	report(results, collector.Snapshot())

	if recorder != nil {
		recorder.Close()
	}
}

func runPhases(driver *trace.Driver, suite streammem.Suite) []trace.PhaseResult {
	phases := suite.Phases()
	if flagBench != "all" {
		phase, ok := suite.Phase(flagBench)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown benchmark phase %q\n", flagBench)
			atexit.Exit(1)
		}

		phases = []streammem.Phase{phase}
	}

	results := make([]trace.PhaseResult, 0, len(phases))
	for _, p := range phases {
		results = append(results, driver.RunPhase(p.Name, p.Gen()))
	}

	return results
}

func report(results []trace.PhaseResult, totals analysis.Stats) {
	bold := color.New(color.Bold)
	good := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	bold.Printf("%-18s %10s %10s %8s %10s %10s\n",
		"Phase", "Accesses", "Hits", "HitRate", "Prefetch", "Confirmed")

	for _, r := range results {
		rate := good
		if r.HitRate() < 0.5 {
			rate = bad
		}

		fmt.Printf("%-18s %10d %10d ", r.Name, r.Accesses, r.Hits)
		rate.Printf("%7.1f%%", r.HitRate()*100)
		fmt.Printf(" %10d %10d\n", r.Prefetches, r.ConfirmedEntries)
	}

	bold.Printf("\nTotal: %d accesses, %d hits (%.1f%%), "+
		"%d prefetches, %d streams confirmed, %d evictions\n",
		totals.Accesses, totals.Hits, totals.HitRate()*100,
		totals.Prefetches, totals.Confirmations, totals.Evictions)
}
