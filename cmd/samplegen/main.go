package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"goeda/internal/sampledata"
)

func main() {
	dir := flag.String("out", ".", "output directory")
	rows := flag.Int("rows", 200, "rows per dataset")
	seed := flag.Int64("seed", 42, "RNG seed (deterministic)")
	start := flag.String("start", "2010-01-01", "first order date (YYYY-MM-DD)")
	clean := flag.Bool("clean", false, "skip duplicate rows, blank cells and unparseable numbers")
	flag.Parse()

	if *rows <= 0 {
		fmt.Fprintln(os.Stderr, "rows must be > 0")
		os.Exit(2)
	}

	startDate, err := time.ParseInLocation("2006-01-02", *start, time.UTC)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid -start (expected YYYY-MM-DD):", err)
		os.Exit(2)
	}

	cfg := sampledata.DefaultConfig()
	cfg.Rows = *rows
	cfg.Seed = *seed
	cfg.StartDate = startDate
	cfg.Dirty = !*clean

	paths, err := sampledata.WriteAll(*dir, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error writing sample data:", err)
		os.Exit(1)
	}

	for _, p := range paths {
		fmt.Printf("Wrote %s\n", p)
	}
	fmt.Printf("Datasets: %d | Rows per dataset: %d | Seed: %d\n", len(paths), cfg.Rows, cfg.Seed)
}
