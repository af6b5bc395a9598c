// Profiling:
// go build ./cmd/ecsprofile
// ./ecsprofile query -mode mem
// go tool pprof -http=":8000" -nodefraction=0.001 ./ecsprofile mem.pprof
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pkg/profile"

	"github.com/l1jgo/ecsrt/internal/core/ecs"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

// sumSystem folds comp2 into comp1 and retires every entity it saw.
type sumSystem struct{}

func (sumSystem) Components() []ecs.ComponentKey {
	return []ecs.ComponentKey{ecs.Key[comp1](), ecs.Key[comp2]()}
}

func (sumSystem) Run(q *ecs.Query, entities []ecs.Entity, cmds *ecs.CommandBuffer, _ *ecs.Emitter) {
	ecs.Each2(q, func(e ecs.Entity, a *comp1, b *comp2) {
		a.V += b.V
		a.W += b.W
	})
	for _, e := range entities {
		cmds.RemoveEntity(e)
	}
}

func printUsage() {
	fmt.Println("Usage: ecsprofile <scenario> [flags]")
	fmt.Println()
	fmt.Println("Scenarios:")
	fmt.Println("  entities  create, fill and destroy entities through the World")
	fmt.Println("  query     filter entities by signature and join two pools")
	fmt.Println("  systems   run a system that retires entities via its command buffer")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	scenario := os.Args[1]
	if scenario == "-h" || scenario == "--help" || scenario == "help" {
		printUsage()
		return
	}

	fs := flag.NewFlagSet(scenario, flag.ExitOnError)
	mode := fs.String("mode", "cpu", "profile mode: cpu or mem")
	dir := fs.String("dir", ".", "profile output directory")
	rounds := fs.Int("rounds", 20, "fresh worlds to build")
	iters := fs.Int("iters", 1000, "iterations per world")
	n := fs.Int("n", 1000, "entities per iteration")
	_ = fs.Parse(os.Args[2:])

	scenarios := map[string]func(rounds, iters, n int){
		"entities": runEntities,
		"query":    runQuery,
		"systems":  runSystems,
	}
	fn, ok := scenarios[scenario]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown scenario: %s\n\n", scenario)
		printUsage()
		os.Exit(1)
	}

	var p interface{ Stop() }
	switch *mode {
	case "cpu":
		p = profile.Start(profile.CPUProfile, profile.ProfilePath(*dir), profile.NoShutdownHook)
	case "mem":
		p = profile.Start(profile.MemProfileAllocs, profile.ProfilePath(*dir), profile.NoShutdownHook)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode: %s\n", *mode)
		os.Exit(1)
	}
	start := time.Now()
	fn(*rounds, *iters, *n)
	p.Stop()
	fmt.Printf("%s: %d rounds × %d iters × %d entities in %s\n", scenario, *rounds, *iters, *n, time.Since(start))
}

func fill(w *ecs.World, n int) {
	for i := 0; i < n; i++ {
		w.CreateEntity().
			With(ecs.C(comp1{V: int64(i)})).
			With(ecs.C(comp2{V: 1, W: 2})).
			Build()
	}
}

func runEntities(rounds, iters, n int) {
	for i := 0; i < rounds; i++ {
		w := ecs.NewWorld(ecs.Options{InitialPoolCapacity: n}, nil)
		for i := 0; i < iters; i++ {
			fill(w, n)
			_ = w.Update()
			for _, e := range w.Query().Entities().With(ecs.Key[comp1]()).Get() {
				_ = w.RemoveEntity(e)
			}
			_ = w.Update()
		}
	}
}

func runQuery(rounds, iters, n int) {
	for i := 0; i < rounds; i++ {
		w := ecs.NewWorld(ecs.Options{InitialPoolCapacity: n}, nil)
		fill(w, n)
		_ = w.Update()
		for i := 0; i < iters; i++ {
			q := w.Query()
			_ = q.Entities().With(ecs.Key[comp1](), ecs.Key[comp2]()).Get()
			ecs.Each2(q, func(_ ecs.Entity, a *comp1, b *comp2) {
				a.V += b.V
				a.W += b.W
			})
		}
	}
}

func runSystems(rounds, iters, n int) {
	for i := 0; i < rounds; i++ {
		w := ecs.NewWorld(ecs.Options{InitialPoolCapacity: n}, nil)
		w.AddSystem(sumSystem{}, false)
		for i := 0; i < iters; i++ {
			fill(w, n)
			_ = w.Update()
			_ = ecs.UpdateSystem[sumSystem](w)
			_ = w.Update()
		}
	}
}
