package routes

import (
	"context"

	"traderoute/internal/world"
)

// generation holds everything one run shares between its origin tasks.
// Only the two stores are mutated once the run starts.
type generation struct {
	edges    EdgeIndex
	maxPorts int
	exp      *Store
	money    *Store
}

func newGeneration(edges EdgeIndex, maxPorts, numRoutes int) *generation {
	return &generation{
		edges:    edges,
		maxPorts: maxPorts,
		exp:      NewStore(RankExperience, numRoutes),
		money:    NewStore(RankMoney, numRoutes),
	}
}

func (g *generation) submit(r Route) {
	g.exp.Add(r)
	g.money.Add(r)
}

func (g *generation) trim() {
	g.exp.Trim()
	g.money.Trim()
}

// discard drops everything an abandoned run collected
func (g *generation) discard() {
	g.exp.Reset()
	g.money.Reset()
}

// cancelCheckInterval is how many extensions pass between context polls
const cancelCheckInterval = 1024

// searcher walks loops from a single origin. It is owned by one task.
type searcher struct {
	gen     *generation
	origin  int
	ctx     context.Context
	steps   int
	stopped bool
	legs    []*OneWayRoute
	expSum  []float64 // running sums, parallel to legs
	monSum  []float64
	visited map[int]struct{}
}

func newSearcher(gen *generation, origin int) *searcher {
	return &searcher{
		gen:     gen,
		origin:  origin,
		legs:    make([]*OneWayRoute, 0, gen.maxPorts),
		expSum:  make([]float64, 0, gen.maxPorts),
		monSum:  make([]float64, 0, gen.maxPorts),
		visited: make(map[int]struct{}, gen.maxPorts),
	}
}

func (s *searcher) push(leg *OneWayRoute) {
	invariant(len(s.legs) < s.gen.maxPorts, "chain from %d grew past %d legs", s.origin, s.gen.maxPorts)
	var exp, mon float64
	if n := len(s.legs); n > 0 {
		exp, mon = s.expSum[n-1], s.monSum[n-1]
	}
	s.legs = append(s.legs, leg)
	s.expSum = append(s.expSum, exp+leg.ExpMultiplierSum())
	s.monSum = append(s.monSum, mon+leg.MoneyMultiplierSum())
	s.visited[leg.BuySector] = struct{}{}
}

func (s *searcher) pop() {
	n := len(s.legs) - 1
	delete(s.visited, s.legs[n].BuySector)
	s.legs = s.legs[:n]
	s.expSum = s.expSum[:n]
	s.monSum = s.monSum[:n]
}

// cancelled polls the context every cancelCheckInterval calls and latches
// once it has been cancelled
func (s *searcher) cancelled() bool {
	if s.stopped {
		return true
	}
	s.steps++
	if s.steps%cancelCheckInterval == 0 && s.ctx.Err() != nil {
		s.stopped = true
	}
	return s.stopped
}

func (s *searcher) contains(sectorID int) bool {
	_, ok := s.visited[sectorID]
	return ok
}

// run searches every loop whose smallest sector id is the origin. Entry legs
// must go strictly upward so each loop is found by exactly one origin task.
func (s *searcher) run(ctx context.Context, entries []*OneWayRoute) error {
	s.ctx = ctx
	budget := s.gen.maxPorts - 1
	for _, leg := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if leg.BuySector <= s.origin {
			continue
		}
		s.push(leg)
		s.extend(budget, leg.IsEmpty())
		s.pop()
		if s.stopped {
			return ctx.Err()
		}
	}
	s.gen.trim()
	return nil
}

// extend tries every leg out of the chain's current end: legs back to the
// origin close a loop, others grow the chain while budget remains.
func (s *searcher) extend(budget int, lastIsEmpty bool) {
	if s.cancelled() {
		return
	}
	budget--
	current := s.legs[len(s.legs)-1].BuySector
	for _, leg := range s.gen.edges[current] {
		if leg.BuySector < s.origin {
			continue
		}
		empty := leg.IsEmpty()
		if lastIsEmpty && empty {
			continue
		}
		if leg.BuySector == s.origin {
			if len(s.legs) < s.gen.maxPorts {
				s.close(leg)
			}
			continue
		}
		if budget > 0 && !s.contains(leg.BuySector) {
			s.push(leg)
			s.extend(budget, empty)
			s.pop()
			if s.stopped {
				return
			}
		}
	}
}

// close submits the loop made of the current chain plus the closing leg.
// The route is only allocated when one of the stores could take it.
func (s *searcher) close(leg *OneWayRoute) {
	n := len(s.legs)
	turns := float64(n + 1)
	exp := (s.expSum[n-1] + leg.ExpMultiplierSum()) / turns
	mon := (s.monSum[n-1] + leg.MoneyMultiplierSum()) / turns
	if !s.gen.exp.Accepts(exp) && !s.gen.money.Accepts(mon) {
		return
	}

	legs := make([]*OneWayRoute, n+1)
	copy(legs, s.legs)
	legs[n] = leg
	s.gen.submit(newChain(legs, n))
}

// oneWayLoop pairs a leg with a free empty return to its origin
func oneWayLoop(owr *OneWayRoute) *MultiplePortRoute {
	fakeReturn := &OneWayRoute{
		SellSector: owr.BuySector,
		BuySector:  owr.SellSector,
		SellRace:   owr.BuyRace,
		BuyRace:    owr.SellRace,
		Distance:   owr.Distance,
		Good:       world.Nothing,
	}
	return NewMultiplePortRoute(owr, fakeReturn)
}
