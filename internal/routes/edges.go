package routes

import (
	"sort"

	"traderoute/internal/log"
	"traderoute/internal/world"
)

// NoFocus disables the single-sector filter
const NoFocus = -1

// EdgeIndex maps a sector id to the one-way routes leaving it. It is built
// once per generation and only read afterwards.
type EdgeIndex map[int][]*OneWayRoute

// Origins returns the indexed sector ids in ascending order
func (idx EdgeIndex) Origins() []int {
	ids := make([]int, 0, len(idx))
	for id := range idx {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Count returns the total number of one-way routes
func (idx EdgeIndex) Count() int {
	n := 0
	for _, edges := range idx {
		n += len(edges)
	}
	return n
}

// raceFilter answers permitted-race lookups and reports each unknown race once
type raceFilter struct {
	races    map[int]bool
	reported map[int]bool
}

func (f *raceFilter) allowed(sectorID, race int) bool {
	allowed, ok := f.races[race]
	if !ok {
		if !f.reported[race] {
			f.reported[race] = true
			log.Warn("unknown race id, skipping its ports", "race", race, "sector", sectorID)
		}
		return false
	}
	return allowed
}

// BuildOneWayRoutes derives every legal trade leg between sector pairs present
// in distances. A pair is skipped when either port's race is not permitted or,
// with a focus sector set, when neither end is the focus. Each pair gets one
// empty leg when Nothing is enabled, plus one leg per enabled good the origin
// sells and the destination buys.
func BuildOneWayRoutes(sectors map[int]*world.Sector, distances world.Distances, goods map[world.Good]bool, races map[int]bool, focus int) EdgeIndex {
	filter := &raceFilter{races: races, reported: make(map[int]bool)}
	nothingAllowed := goods[world.Nothing]

	var tradeGoods []world.Good
	for _, g := range world.Goods() {
		if g != world.Nothing && goods[g] {
			tradeGoods = append(tradeGoods, g)
		}
	}

	origins := make([]int, 0, len(distances))
	for id := range distances {
		origins = append(origins, id)
	}
	sort.Ints(origins)

	index := make(EdgeIndex, len(origins))
	for _, originID := range origins {
		origin := sectors[originID]
		if origin == nil || origin.Port == nil {
			log.Debug("no port in sector, skipping", "sector", originID)
			continue
		}
		originPort := origin.Port
		if !filter.allowed(originID, originPort.Race) {
			continue
		}

		row := distances[originID]
		targets := make([]int, 0, len(row))
		for id := range row {
			targets = append(targets, id)
		}
		sort.Ints(targets)

		edges := make([]*OneWayRoute, 0, 15)
		for _, targetID := range targets {
			target := sectors[targetID]
			if target == nil || target.Port == nil {
				continue
			}
			targetPort := target.Port
			if !filter.allowed(targetID, targetPort.Race) {
				continue
			}
			if focus != NoFocus && originID != focus && targetID != focus {
				continue
			}
			distance := row[targetID]

			newLeg := func(g world.Good) *OneWayRoute {
				return &OneWayRoute{
					SellSector:   originID,
					BuySector:    targetID,
					SellRace:     originPort.Race,
					BuyRace:      targetPort.Race,
					SellDistance: originPort.Distance(g),
					BuyDistance:  targetPort.Distance(g),
					Distance:     distance,
					Good:         g,
				}
			}

			if nothingAllowed {
				edges = append(edges, newLeg(world.Nothing))
			}
			for _, g := range tradeGoods {
				if originPort.Sells(g) && targetPort.Buys(g) {
					edges = append(edges, newLeg(g))
				}
			}
		}
		index[originID] = edges
	}
	return index
}
