// cmd/slotrcu-bench/main.go
//
// slotrcu-bench runs the same single-writer, multi-reader sequences the
// original local-rcu crate's criterion benchmarks do, reporting how long
// each scenario takes and verifying every reader observed a
// non-decreasing sequence of values.
//
// Usage:
//
//	slotrcu-bench [-c scenarios.jsonc] [-v]
package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/mjm918/slotrcu/pkg/slotrcu"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut *os.File) int {
	flagSet := flag.NewFlagSet("slotrcu-bench", flag.ContinueOnError)
	flagSet.SetOutput(errOut)

	configPath := flagSet.StringP("config", "c", "", "JSONC scenario file (default: built-in scenarios)")
	verbose := flagSet.BoolP("verbose", "v", false, "enable debug logging from the Writer")

	if err := flagSet.Parse(args); err != nil {
		return 1
	}

	scenarios, err := loadScenarios(*configPath)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	logger := zap.NewNop()
	if *verbose {
		l, buildErr := zap.NewDevelopment()
		if buildErr != nil {
			fmt.Fprintln(errOut, "error building logger:", buildErr)
			return 1
		}
		defer l.Sync() //nolint:errcheck
		logger = l
	}

	for _, s := range scenarios {
		elapsed, err := runScenario(s, logger)
		if err != nil {
			fmt.Fprintf(errOut, "scenario %s: %v\n", s.Name, err)
			return 1
		}
		fmt.Fprintf(out, "%-16s updates=%-8d readers=%-4d elapsed=%s\n", s.Name, s.Updates, s.Readers, elapsed)
	}

	return 0
}

func runScenario(s scenario, logger *zap.Logger) (time.Duration, error) {
	w, r0 := slotrcu.New(0)
	w.SetLogger(logger.Named(s.Name))

	var wg sync.WaitGroup
	errs := make(chan error, s.Readers)

	for i := 0; i < s.Readers; i++ {
		r := r0.Clone()
		wg.Add(1)
		go func(r *slotrcu.Reader[int]) {
			defer wg.Done()
			defer r.Close()
			prev := 0
			for {
				g := r.Read()
				v := g.Value()
				g.Close()
				if prev > v {
					errs <- fmt.Errorf("observed value went backwards: %d after %d", v, prev)
					return
				}
				if v == s.Updates {
					return
				}
				prev = v
			}
		}(r)
	}
	r0.Close()

	start := time.Now()
	for i := 1; i <= s.Updates; i++ {
		w.Write(i)
		if s.SyncEvery > 0 && i%s.SyncEvery == 0 {
			w.TrySync()
		}
	}
	wg.Wait()
	elapsed := time.Since(start)

	close(errs)
	for err := range errs {
		return elapsed, err
	}

	if _, err := w.Close(); err != nil {
		return elapsed, fmt.Errorf("closing writer: %w", err)
	}
	return elapsed, nil
}
