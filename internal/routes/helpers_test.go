package routes

import (
	"math/rand/v2"

	"traderoute/internal/world"
)

// testWorld is a small builder for hand-made worlds
type testWorld struct {
	sectors   map[int]*world.Sector
	distances world.Distances
}

func newTestWorld() *testWorld {
	return &testWorld{
		sectors:   make(map[int]*world.Sector),
		distances: make(world.Distances),
	}
}

func (tw *testWorld) port(id, race int) *world.Port {
	s := world.NewSector(id, 1)
	s.Port = world.NewPort(race, 1)
	tw.sectors[id] = s
	return s.Port
}

func (tw *testWorld) link(from, to, turns int) {
	tw.distances.Set(from, to, world.Distance{Turns: turns, Hops: turns})
}

func (tw *testWorld) linkBoth(a, b, turns int) {
	tw.link(a, b, turns)
	tw.link(b, a, turns)
}

func goodsOf(goods ...world.Good) map[world.Good]bool {
	m := make(map[world.Good]bool, len(goods))
	for _, g := range goods {
		m[g] = true
	}
	return m
}

// randomWorld builds n fully linked ports with random trade stances
func randomWorld(seed uint64, n int) *testWorld {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	tw := newTestWorld()
	trade := []world.Good{world.Wood, world.Food, world.Ore, world.Slaves, world.Weapons}
	for id := 1; id <= n; id++ {
		p := tw.port(id, 1+rng.IntN(2))
		for _, g := range trade {
			switch rng.IntN(3) {
			case 1:
				p.SetGood(g, world.StatusSells, float64(1+rng.IntN(9)))
			case 2:
				p.SetGood(g, world.StatusBuys, float64(1+rng.IntN(9)))
			}
		}
	}
	for a := 1; a <= n; a++ {
		for b := 1; b <= n; b++ {
			if a != b {
				tw.link(a, b, 1+rng.IntN(6))
			}
		}
	}
	return tw
}

func legKey(r Route) string {
	key := ""
	for _, leg := range r.Legs() {
		key += leg.String() + "|"
	}
	return key
}
