// Profiling:
// go build ./profile/churn
// go tool pprof -http=":8000" -nodefraction=0.001 ./churn mem.pprof

package main

import (
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/pkg/profile"
	"go.uber.org/zap"

	"github.com/edwinsyarief/pointindex"
)

type agent struct {
	id  uuid.UUID
	pos pointindex.Point
	vel pointindex.Point
}

func main() {
	log, _ := zap.NewDevelopment()
	defer log.Sync()

	rounds := 20
	ticks := 2000
	agents := 5000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(log, rounds, ticks, agents)
	p.Stop()
}

func run(log *zap.Logger, rounds, ticks, numAgents int) {
	half := pointindex.Point{X: 2048, Y: 2048}
	for round := range rounds {
		tree, err := pointindex.New[uuid.UUID](half, pointindex.WithLogger(log.WithOptions(zap.IncreaseLevel(zap.WarnLevel))))
		if err != nil {
			log.Fatal("create tree", zap.Error(err))
		}
		rng := rand.New(rand.NewPCG(uint64(round), 7))
		agents := make([]agent, numAgents)
		for i := range agents {
			agents[i] = agent{
				id:  uuid.New(),
				pos: pointindex.Point{X: float32(rng.Float64()*2-1) * half.X, Y: float32(rng.Float64()*2-1) * half.Y},
				vel: pointindex.Point{X: float32(rng.NormFloat64() * 4), Y: float32(rng.NormFloat64() * 4)},
			}
			if err := tree.Insert(agents[i].id, agents[i].pos); err != nil {
				log.Fatal("insert", zap.Error(err))
			}
		}

		for range ticks {
			for i := range agents {
				a := &agents[i]
				next := pointindex.Point{X: a.pos.X + a.vel.X, Y: a.pos.Y + a.vel.Y}
				if !tree.Bounds().Contains(next) {
					a.vel = pointindex.Point{X: -a.vel.X, Y: -a.vel.Y}
					continue
				}
				if err := tree.Move(a.id, next); err != nil {
					log.Error("move", zap.Stringer("agent", a.id), zap.Error(err))
					continue
				}
				a.pos = next
			}
			// Respawn a slice of the population every tick.
			for i := range numAgents / 100 {
				a := &agents[rng.IntN(numAgents)]
				tree.Remove(a.id)
				a.id = uuid.New()
				if err := tree.Insert(a.id, a.pos); err != nil {
					log.Error("respawn", zap.Int("i", i), zap.Error(err))
				}
			}
		}
		stats := tree.Stats()
		log.Info("round done",
			zap.Int("round", round),
			zap.Int("nodes", stats.Nodes),
			zap.Int("buckets", stats.Buckets),
			zap.Int("depth", stats.Depth))
	}
}
