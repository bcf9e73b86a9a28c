// Profiling:
// go build ./profile/query
// go tool pprof -http=":8000" -nodefraction=0.001 ./query cpu.prof

package main

import (
	"math/rand/v2"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/edwinsyarief/pointindex"
)

func main() {
	// CPU Profiling
	f, _ := os.Create("cpu.prof")
	_ = pprof.StartCPUProfile(f)
	defer pprof.StopCPUProfile()

	count := 20
	iters := 10000
	points := 50000
	run(count, iters, points)

	// Memory Profiling
	memFile, _ := os.Create("mem.prof")
	defer memFile.Close()
	runtime.GC() // Trigger garbage collection
	_ = pprof.WriteHeapProfile(memFile)
}

func run(rounds, iters, numPoints int) {
	half := pointindex.Point{X: 1024, Y: 1024}
	for round := range rounds {
		tree, err := pointindex.New[int](half)
		if err != nil {
			panic(err)
		}
		rng := rand.New(rand.NewPCG(uint64(round), 3))
		centers := make([]pointindex.Point, numPoints)
		for i := range centers {
			centers[i] = pointindex.Point{X: float32(rng.Float64()*2-1) * half.X, Y: float32(rng.Float64()*2-1) * half.Y}
			_ = tree.Insert(i, centers[i])
		}

		q := pointindex.NewRegionQuery(tree, pointindex.AABB{})
		hits := 0
		for i := range iters {
			q.SetBox(pointindex.Around(centers[i%numPoints], 32, 32))
			for q.Next() {
				hits++
			}
			if _, ok := tree.QueryPoint(centers[(i*7)%numPoints]); ok {
				hits++
			}
		}
		_ = hits
	}
}
