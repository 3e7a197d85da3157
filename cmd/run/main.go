package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	caferuntime "github.com/cafebrew/cafe-runtime"
	"github.com/cafebrew/cafe-runtime/collections"
	"github.com/cafebrew/cafe-runtime/hasher"
	"github.com/cafebrew/cafe-runtime/heap"
	"github.com/cafebrew/cafe-runtime/native/sim"
	"github.com/cafebrew/cafe-runtime/native/wasmheap"
	"github.com/cafebrew/cafe-runtime/proc"
)

// backend is what a workload needs from a native capability surface, plus
// the free-space probe both hosted surfaces provide.
type backend interface {
	caferuntime.Surface
	FreeBytes() uint32
}

func main() {
	var (
		backendName = flag.String("backend", "sim", "Heap backend: sim or wasm")
		heapKB      = flag.Uint("heap", 1024, "Heap budget in KB")
		scenario    = flag.String("scenario", "", "Path to a YAML workload file")
		ops         = flag.Uint("ops", 10000, "Operations per phase when no scenario is given")
		seed        = flag.Int64("seed", 1, "Workload RNG seed")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		proc.SetLogger(logger)
	}

	sc, err := loadOrDefault(*scenario, int(*ops), *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*backendName, *heapKB, sc); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*backendName, *heapKB, sc); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newBackend(name string, heapKB uint) (backend, func(), error) {
	switch name {
	case "sim":
		surface := sim.New(uint32(heapKB) << 10)
		return surface, func() {}, nil

	case "wasm":
		pages := (uint32(heapKB)<<10 + 65535) / 65536
		if pages == 0 {
			pages = 1
		}
		ctx := context.Background()
		surface, err := wasmheap.New(ctx, wasmheap.Config{MaxPages: pages})
		if err != nil {
			return nil, nil, err
		}
		return surface, func() { _ = surface.Close(ctx) }, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q (want sim or wasm)", name)
	}
}

func run(backendName string, heapKB uint, sc *Scenario) error {
	surface, cleanup, err := newBackend(backendName, heapKB)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := proc.Init(surface); err != nil {
		return err
	}

	fmt.Printf("Scenario: %s\n", sc.Name)
	fmt.Printf("Backend: %s (%d KB)\n", backendName, heapKB)
	fmt.Printf("Phases: %d\n\n", len(sc.Phases))

	r := newRunner(surface, sc.Seed)
	defer r.close()

	err = proc.Run(func() {
		for _, p := range sc.Phases {
			res := r.runPhase(p)
			fmt.Printf("  %-12s %6d ins %6d del %6d get (%d hits, %d exhausted) in %s\n",
				res.Name, res.Inserts, res.Deletes, res.Lookups,
				res.Hits, res.Exhausted, res.Duration.Round(time.Microsecond))
		}
	})
	if err != nil {
		return err
	}

	st := r.adapter.Stats()
	fmt.Printf("\nHeap: %d bytes live, %d allocs, %d frees, %d exhaustion failures\n",
		st.LiveBytes, st.Allocs, st.Frees, st.Fails)
	fmt.Printf("Surface: %d bytes free\n", surface.FreeBytes())
	fmt.Printf("Table: %d entries in %d slots\n", r.table.Len(), r.table.Slots())

	return proc.Shutdown()
}

// PhaseResult summarizes one executed workload phase.
type PhaseResult struct {
	Name      string
	Inserts   int
	Deletes   int
	Lookups   int
	Hits      int
	Exhausted int
	Duration  time.Duration
}

// runner drives a scenario against a map of heap-allocated payload blocks.
// Every insert allocates a native block and indexes it; every delete
// releases it. Exhaustion shows up as skipped inserts, never as a failure.
type runner struct {
	adapter *heap.Heap
	table   *collections.Map[uint64, heap.Block]
	rng     *rand.Rand
	keys    []uint64
}

func newRunner(surface backend, seed int64) *runner {
	adapter := heap.New(surface, surface)
	return &runner{
		adapter: adapter,
		table:   collections.NewMap[uint64, heap.Block](hasher.Uint64()),
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (r *runner) runPhase(p Phase) PhaseResult {
	res := PhaseResult{Name: p.Name}
	start := time.Now()

	for i := 0; i < p.Inserts; i++ {
		key := r.rng.Uint64()
		blk, err := r.adapter.Alloc(uint32(p.ValueSize), 8)
		if err != nil {
			res.Exhausted++
			continue
		}
		prev, replaced, err := r.table.Put(key, blk)
		if err != nil {
			r.adapter.Free(blk)
			res.Exhausted++
			continue
		}
		if replaced {
			r.adapter.Free(prev)
		} else {
			r.keys = append(r.keys, key)
		}
		res.Inserts++
	}

	for i := 0; i < p.Lookups && len(r.keys) > 0; i++ {
		key := r.keys[r.rng.Intn(len(r.keys))]
		if _, ok := r.table.Get(key); ok {
			res.Hits++
		}
		res.Lookups++
	}

	for i := 0; i < p.Deletes && len(r.keys) > 0; i++ {
		j := r.rng.Intn(len(r.keys))
		key := r.keys[j]
		r.keys[j] = r.keys[len(r.keys)-1]
		r.keys = r.keys[:len(r.keys)-1]
		if blk, ok := r.table.Delete(key); ok {
			r.adapter.Free(blk)
			res.Deletes++
		}
	}

	res.Duration = time.Since(start)
	return res
}

func (r *runner) close() {
	for _, blk := range r.table.All() {
		r.adapter.Free(blk)
	}
	r.table.Close()
}
