package utils

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Verbose controls whether progress and statistics are printed.
var Verbose = true

// Output is the writer where statistics are printed. Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// ServeStats holds timing information for a serving run.
type ServeStats struct {
	Steps       int
	TotalTime   time.Duration
	ShareTime   time.Duration
	ComputeTime time.Duration
}

// PrintServeStats prints serving statistics. Respects the Verbose flag.
func PrintServeStats(stats *ServeStats) {
	if !Verbose || stats.Steps == 0 {
		return
	}
	fmt.Fprintln(Output, "\n=== SERVING STATISTICS ===")
	fmt.Fprintf(Output, "Steps served: %d\n", stats.Steps)
	fmt.Fprintf(Output, "Share (convert + init): %v\n", stats.ShareTime)
	fmt.Fprintf(Output, "Total serving time: %v\n", stats.TotalTime)
	fmt.Fprintf(Output, "Average time per step: %v\n", stats.TotalTime/time.Duration(stats.Steps))
	if stats.ComputeTime > 0 {
		fmt.Fprintf(Output, "Secure compute time: %v (%.1f%%)\n",
			stats.ComputeTime, float64(stats.ComputeTime)/float64(stats.TotalTime)*100)
	}
}
